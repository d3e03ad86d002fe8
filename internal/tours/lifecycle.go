// Package tours manages the lifecycle of scheduled property tours and the
// per-agent tour statistics derived from them.
package tours

import (
	"errors"
	"fmt"
	"time"

	"estateview/server/internal/metrics"
	"estateview/server/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTourNotFound covers both a missing tour and a tour owned by a
	// different agent; the ownership filter makes the two indistinguishable.
	ErrTourNotFound      = errors.New("tour not found")
	ErrInvalidStatus     = errors.New("invalid tour status")
	ErrInvalidTransition = errors.New("invalid tour status transition")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// transitions is the allowed move set; statuses without an entry are
// terminal.
var transitions = map[string][]string{
	models.TourStatusPending:   {models.TourStatusConfirmed, models.TourStatusCancelled},
	models.TourStatusConfirmed: {models.TourStatusCompleted, models.TourStatusNoShow, models.TourStatusCancelled},
}

func validStatus(status string) bool {
	switch status {
	case models.TourStatusPending, models.TourStatusConfirmed, models.TourStatusCancelled,
		models.TourStatusCompleted, models.TourStatusNoShow:
		return true
	}
	return false
}

func canTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// LifecycleStore is the storage surface the state machine needs.
type LifecycleStore interface {
	TourStatusForOwner(tourID, ownerID string) (string, bool, error)
	TransitionTour(tourID, ownerID, fromStatus, toStatus string, now time.Time) (bool, error)
	SaveTourFeedback(tourID, ownerID string, fb models.TourFeedback, now time.Time) (bool, error)
}

// StateMachine applies tour status transitions on behalf of the owning
// agent, stamping the transition time for each target state.
type StateMachine struct {
	store  LifecycleStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewStateMachine(store LifecycleStore, logger *logrus.Logger) *StateMachine {
	return &StateMachine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// UpdateStatus moves a tour to newStatus. Only the owning agent's tours are
// visible to the update; anything else reports ErrTourNotFound. Illegal
// moves against the transition table are rejected before touching storage.
func (s *StateMachine) UpdateStatus(tourID, newStatus, requestingUserID string) error {
	if !validStatus(newStatus) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	current, found, err := s.store.TourStatusForOwner(tourID, requestingUserID)
	if err != nil {
		return fmt.Errorf("failed to look up tour: %w", err)
	}
	if !found {
		return ErrTourNotFound
	}

	if !canTransition(current, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
	}

	applied, err := s.store.TransitionTour(tourID, requestingUserID, current, newStatus, s.now())
	if err != nil {
		return fmt.Errorf("failed to update tour status: %w", err)
	}
	if !applied {
		// The status moved under us between the read and the update.
		return fmt.Errorf("%w: tour no longer in status %s", ErrInvalidTransition, current)
	}

	metrics.TourTransitions.WithLabelValues(newStatus).Inc()
	return nil
}

// AddFeedback attaches the agent's post-tour report. The tour's status is
// not checked: agents may file feedback at any point after booking.
func (s *StateMachine) AddFeedback(tourID string, fb models.TourFeedback, requestingUserID string) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return ErrInvalidRating
	}

	applied, err := s.store.SaveTourFeedback(tourID, requestingUserID, fb, s.now())
	if err != nil {
		return fmt.Errorf("failed to save tour feedback: %w", err)
	}
	if !applied {
		return ErrTourNotFound
	}
	return nil
}
