// Package views records property views and derives view analytics from them.
package views

import (
	"errors"
	"fmt"
	"time"

	"estateview/server/internal/metrics"
	"estateview/server/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrMissingIdentity  = errors.New("a user id or session id is required")
)

// Identity is the deduplication key for view counting: the authenticated
// user id when present, otherwise an anonymous session token the client
// holds for the duration of the browsing session.
type Identity struct {
	UserID    string
	SessionID string
}

func (i Identity) empty() bool {
	return i.UserID == "" && i.SessionID == ""
}

// NewSessionToken returns an opaque token for anonymous viewers.
func NewSessionToken() string {
	return uuid.NewString()
}

// RecordResult reports the outcome of a view request.
type RecordResult struct {
	Recorded bool   `json:"recorded"`
	Message  string `json:"message"`
}

// RecorderStore is the storage surface the recorder needs.
type RecorderStore interface {
	PropertyExists(id string) (bool, error)
	HasPropertyView(propertyID, userID, sessionID string) (bool, error)
	InsertPropertyView(v *models.PropertyView) (bool, error)
	IncrementPropertyViews(propertyID string) error
}

// Recorder records at most one view per (property, identity) pair and keeps
// the denormalized per-property counter in step with the view log.
type Recorder struct {
	store  RecorderStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewRecorder(store RecorderStore, logger *logrus.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RecordView records a view of the property by the given identity. Repeat
// calls for the same pair are an idempotent no-op. The view log is the source
// of truth: a failure to bump the cached counter is logged but does not fail
// the request.
func (r *Recorder) RecordView(propertyID string, identity Identity) (*RecordResult, error) {
	if identity.empty() {
		return nil, ErrMissingIdentity
	}

	exists, err := r.store.PropertyExists(propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up property: %w", err)
	}
	if !exists {
		return nil, ErrPropertyNotFound
	}

	seen, err := r.store.HasPropertyView(propertyID, identity.UserID, identity.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing view: %w", err)
	}
	if seen {
		metrics.DuplicateViews.Inc()
		return &RecordResult{Recorded: false, Message: "already recorded"}, nil
	}

	view := &models.PropertyView{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		UserID:     identity.UserID,
		SessionID:  identity.SessionID,
		ViewedAt:   r.now(),
	}
	inserted, err := r.store.InsertPropertyView(view)
	if err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}
	if !inserted {
		// Lost the race against a concurrent request for the same identity;
		// the unique index kept the log correct.
		metrics.DuplicateViews.Inc()
		return &RecordResult{Recorded: false, Message: "already recorded"}, nil
	}

	if err := r.store.IncrementPropertyViews(propertyID); err != nil {
		r.logger.WithError(err).WithField("property_id", propertyID).
			Error("Failed to increment view counter")
	}

	metrics.ViewsRecorded.Inc()
	return &RecordResult{Recorded: true, Message: "view recorded"}, nil
}
