package models

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// UserStats holds the denormalized per-user dashboard counters. Each counter
// mirrors the true count/sum of the related rows for that user and is kept in
// sync by the accumulator on every create/delete of a related entity.
// TotalCities is the exception: it is fully recomputed from the user's active
// properties because city values can be edited in place.
type UserStats struct {
	UserID            string    `json:"user_id"`
	TotalProperties   int64     `json:"totalProperties"`
	PropertiesForSale int64     `json:"propertiesForSale"`
	PropertiesForRent int64     `json:"propertiesForRent"`
	TotalCustomers    int64     `json:"totalCustomers"`
	TotalCities       int64     `json:"totalCities"`
	TotalRevenue      float64   `json:"totalRevenue"`
	MonthlyRevenue    float64   `json:"monthlyRevenue"`
	TotalLeads        int64     `json:"totalLeads"`
	ActiveLeads       int64     `json:"activeLeads"`
	ConvertedLeads    int64     `json:"convertedLeads"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusActive    = "active"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

type Lead struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `gorm:"default:new" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

type RevenueRecord struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"user_id"`
	PropertyID string    `json:"property_id,omitempty"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (RevenueRecord) TableName() string {
	return "revenue"
}
