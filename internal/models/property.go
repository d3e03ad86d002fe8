package models

import "time"

// Property listing statuses.
const (
	PropertyStatusActive   = "active"
	PropertyStatusSold     = "sold"
	PropertyStatusInactive = "inactive"
)

// Listing types.
const (
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

type Property struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index" json:"user_id"`
	Title        string    `json:"title"`
	City         string    `json:"city"`
	Status       string    `gorm:"default:active" json:"status"`
	ListingType  string    `json:"listing_type"`
	PropertyType string    `json:"property_type"`
	Price        int64     `json:"price"`
	Views        int64     `gorm:"default:0" json:"views"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyView is one recorded visit to a property listing. Rows are
// append-only: they are never updated or deleted once written.
type PropertyView struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	ViewedAt   time.Time `json:"viewed_at"`
}

func (PropertyView) TableName() string {
	return "property_views"
}

type Favorite struct {
	UserID     string    `gorm:"primaryKey" json:"user_id"`
	PropertyID string    `gorm:"primaryKey" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
