package models

import "time"

// Tour statuses. A tour starts out pending and moves through the agent's
// confirmation flow; completed, cancelled and no_show are terminal.
const (
	TourStatusPending   = "pending"
	TourStatusConfirmed = "confirmed"
	TourStatusCancelled = "cancelled"
	TourStatusCompleted = "completed"
	TourStatusNoShow    = "no_show"
)

// Tour is a scheduled property visit requested by a visitor and managed by
// the property's owning agent. Tours are never deleted; they form the audit
// trail for the agent's pipeline.
type Tour struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	PropertyID      string     `gorm:"index" json:"property_id"`
	PropertyOwnerID string     `gorm:"index" json:"property_owner_id"`
	VisitorName     string     `json:"visitor_name"`
	VisitorEmail    string     `json:"visitor_email"`
	VisitorPhone    string     `json:"visitor_phone,omitempty"`
	VisitorMessage  string     `json:"visitor_message,omitempty"`
	TourDate        string     `json:"tour_date"`
	TourTime        string     `json:"tour_time"`
	Status          string     `gorm:"default:pending" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	AgentFeedback   string     `json:"agent_feedback,omitempty"`
	AgentRating     *int       `json:"agent_rating,omitempty"`
	AgentNotes      string     `json:"agent_notes,omitempty"`
	FollowUpRequired bool      `json:"follow_up_required"`
	FollowUpDate    string     `json:"follow_up_date,omitempty"`
	FollowUpNotes   string     `json:"follow_up_notes,omitempty"`
}

func (Tour) TableName() string {
	return "tours"
}

// TourFeedback is the agent's post-tour report attached to a completed tour.
type TourFeedback struct {
	Feedback         string `json:"feedback"`
	Rating           int    `json:"rating"`
	Notes            string `json:"notes,omitempty"`
	FollowUpRequired bool   `json:"follow_up_required"`
	FollowUpDate     string `json:"follow_up_date,omitempty"`
	FollowUpNotes    string `json:"follow_up_notes,omitempty"`
}
