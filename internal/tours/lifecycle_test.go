package tours

import (
	"errors"
	"testing"
	"time"

	"estateview/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLifecycleStore is a mock implementation of the LifecycleStore interface
type MockLifecycleStore struct {
	mock.Mock
}

func (m *MockLifecycleStore) TourStatusForOwner(tourID, ownerID string) (string, bool, error) {
	args := m.Called(tourID, ownerID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLifecycleStore) TransitionTour(tourID, ownerID, fromStatus, toStatus string, now time.Time) (bool, error) {
	args := m.Called(tourID, ownerID, fromStatus, toStatus, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockLifecycleStore) SaveTourFeedback(tourID, ownerID string, fb models.TourFeedback, now time.Time) (bool, error) {
	args := m.Called(tourID, ownerID, fb, now)
	return args.Bool(0), args.Error(1)
}

func TestUpdateStatus_PendingToConfirmed(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	store.On("TourStatusForOwner", "tour_1", "agent_1").Return(models.TourStatusPending, true, nil)
	store.On("TransitionTour", "tour_1", "agent_1", models.TourStatusPending, models.TourStatusConfirmed, now).
		Return(true, nil)

	err := sm.UpdateStatus("tour_1", models.TourStatusConfirmed, "agent_1")
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to confirmed", models.TourStatusPending, models.TourStatusConfirmed, true},
		{"pending to cancelled", models.TourStatusPending, models.TourStatusCancelled, true},
		{"pending to completed", models.TourStatusPending, models.TourStatusCompleted, false},
		{"pending to no_show", models.TourStatusPending, models.TourStatusNoShow, false},
		{"confirmed to completed", models.TourStatusConfirmed, models.TourStatusCompleted, true},
		{"confirmed to no_show", models.TourStatusConfirmed, models.TourStatusNoShow, true},
		{"confirmed to cancelled", models.TourStatusConfirmed, models.TourStatusCancelled, true},
		{"confirmed to pending", models.TourStatusConfirmed, models.TourStatusPending, false},
		{"completed is terminal", models.TourStatusCompleted, models.TourStatusPending, false},
		{"cancelled is terminal", models.TourStatusCancelled, models.TourStatusConfirmed, false},
		{"no_show is terminal", models.TourStatusNoShow, models.TourStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockLifecycleStore{}
			sm := NewStateMachine(store, logrus.New())

			store.On("TourStatusForOwner", "tour_1", "agent_1").Return(tt.from, true, nil)
			if tt.allowed {
				store.On("TransitionTour", "tour_1", "agent_1", tt.from, tt.to, mock.Anything).
					Return(true, nil)
			}

			err := sm.UpdateStatus("tour_1", tt.to, "agent_1")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				store.AssertNotCalled(t, "TransitionTour",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	err := sm.UpdateStatus("tour_1", "rescheduled", "agent_1")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	store.AssertNotCalled(t, "TourStatusForOwner", mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotOwnerReportsNotFound(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	store.On("TourStatusForOwner", "tour_1", "intruder").Return("", false, nil)

	err := sm.UpdateStatus("tour_1", models.TourStatusConfirmed, "intruder")
	assert.ErrorIs(t, err, ErrTourNotFound)
}

func TestUpdateStatus_ConcurrentTransitionRejected(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	// The status moved between the read and the update, so the filtered
	// UPDATE matched nothing.
	store.On("TourStatusForOwner", "tour_1", "agent_1").Return(models.TourStatusPending, true, nil)
	store.On("TransitionTour", "tour_1", "agent_1", models.TourStatusPending, models.TourStatusConfirmed, mock.Anything).
		Return(false, nil)

	err := sm.UpdateStatus("tour_1", models.TourStatusConfirmed, "agent_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_StorageFailure(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	store.On("TourStatusForOwner", "tour_1", "agent_1").Return("", false, errors.New("db error"))

	err := sm.UpdateStatus("tour_1", models.TourStatusConfirmed, "agent_1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTourNotFound)
}

func TestAddFeedback(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	fb := models.TourFeedback{Feedback: "Great visit", Rating: 5, FollowUpRequired: true, FollowUpDate: "2024-07-01"}
	store.On("SaveTourFeedback", "tour_1", "agent_1", fb, mock.Anything).Return(true, nil)

	err := sm.AddFeedback("tour_1", fb, "agent_1")
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestAddFeedback_RatingValidation(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	for _, rating := range []int{0, -1, 6} {
		err := sm.AddFeedback("tour_1", models.TourFeedback{Rating: rating}, "agent_1")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	store.AssertNotCalled(t, "SaveTourFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddFeedback_NotFound(t *testing.T) {
	store := &MockLifecycleStore{}
	sm := NewStateMachine(store, logrus.New())

	store.On("SaveTourFeedback", "tour_1", "agent_1", mock.Anything, mock.Anything).Return(false, nil)

	err := sm.AddFeedback("tour_1", models.TourFeedback{Rating: 4}, "agent_1")
	assert.ErrorIs(t, err, ErrTourNotFound)
}
