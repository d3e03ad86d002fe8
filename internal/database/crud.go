package database

import (
	"errors"

	"estateview/server/internal/models"

	"gorm.io/gorm"
)

// CRUD for the surrounding listing/lead entities goes through gorm on the
// same connection pool as the raw SQL paths. The analytics and counter
// queries stay hand-written; plain row shuffling does not need to be.

func (d *Database) CreateProperty(p *models.Property) error {
	return d.orm.Create(p).Error
}

func (d *Database) GetProperty(id string) (*models.Property, bool, error) {
	var p models.Property
	err := d.orm.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (d *Database) ListProperties(city, status string) ([]models.Property, error) {
	q := d.orm.Order("created_at DESC")
	if city != "" {
		q = q.Where("city = ?", city)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var properties []models.Property
	if err := q.Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// ListPropertiesWithCoordinates returns active properties that have been
// geolocated, for the radius search.
func (d *Database) ListPropertiesWithCoordinates() ([]models.Property, error) {
	var properties []models.Property
	err := d.orm.
		Where("status = ?", models.PropertyStatusActive).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// SaveProperty persists the full property row. Ownership is checked by the
// caller before mutating.
func (d *Database) SaveProperty(p *models.Property) error {
	return d.orm.Save(p).Error
}

// DeleteProperty removes a property owned by the given user. Returns false
// when no row matched the ownership filter.
func (d *Database) DeleteProperty(id, ownerID string) (bool, error) {
	res := d.orm.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Property{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) CreateTour(t *models.Tour) error {
	return d.orm.Create(t).Error
}

func (d *Database) GetTour(id string) (*models.Tour, bool, error) {
	var t models.Tour
	err := d.orm.First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

func (d *Database) ListToursForOwner(ownerID string) ([]models.Tour, error) {
	var tours []models.Tour
	err := d.orm.
		Where("property_owner_id = ?", ownerID).
		Order("tour_date DESC, tour_time DESC").
		Find(&tours).Error
	if err != nil {
		return nil, err
	}
	return tours, nil
}

func (d *Database) CreateLead(l *models.Lead) error {
	return d.orm.Create(l).Error
}

func (d *Database) GetLeadForOwner(id, ownerID string) (*models.Lead, bool, error) {
	var l models.Lead
	err := d.orm.First(&l, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &l, true, nil
}

func (d *Database) UpdateLeadStatus(id, ownerID, status string) (bool, error) {
	res := d.orm.Model(&models.Lead{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) DeleteLead(id, ownerID string) (bool, error) {
	res := d.orm.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Lead{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) CreateRevenue(r *models.RevenueRecord) error {
	return d.orm.Create(r).Error
}

// AddFavorite bookmarks a property for a user; adding twice is a no-op.
func (d *Database) AddFavorite(f *models.Favorite) error {
	return d.orm.FirstOrCreate(f, models.Favorite{UserID: f.UserID, PropertyID: f.PropertyID}).Error
}

func (d *Database) RemoveFavorite(userID, propertyID string) (bool, error) {
	res := d.orm.Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
