package api

import (
	"net/http"
	"strconv"

	"estateview/server/internal/geometry"
	"estateview/server/internal/models"
	"estateview/server/internal/userstats"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type propertyRequest struct {
	Title        string   `json:"title" binding:"required"`
	City         string   `json:"city"`
	ListingType  string   `json:"listing_type" binding:"required,oneof=sale rent"`
	PropertyType string   `json:"property_type"`
	Price        int64    `json:"price"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func listingTypeField(listingType string) string {
	if listingType == models.ListingTypeRent {
		return userstats.FieldPropertiesForRent
	}
	return userstats.FieldPropertiesForSale
}

// CreateProperty adds a listing for the requesting user and bumps the
// user's property counters.
func (h *Handler) CreateProperty(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	property := &models.Property{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        req.Title,
		City:         req.City,
		Status:       models.PropertyStatusActive,
		ListingType:  req.ListingType,
		PropertyType: req.PropertyType,
		Price:        req.Price,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if err := h.db.CreateProperty(property); err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	h.accumulator.ApplyDelta(userID, map[string]float64{
		userstats.FieldTotalProperties:  1,
		listingTypeField(req.ListingType): 1,
	})
	h.accumulator.RecomputeTotalCities(userID)

	c.JSON(http.StatusCreated, property)
}

// GetProperty returns a single listing.
func (h *Handler) GetProperty(c *gin.Context) {
	property, found, err := h.db.GetProperty(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// ListProperties returns listings, optionally filtered by city and status.
func (h *Handler) ListProperties(c *gin.Context) {
	properties, err := h.db.ListProperties(c.Query("city"), c.Query("status"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

type propertyUpdateRequest struct {
	Title        *string  `json:"title"`
	City         *string  `json:"city"`
	Status       *string  `json:"status" binding:"omitempty,oneof=active sold inactive"`
	PropertyType *string  `json:"property_type"`
	Price        *int64   `json:"price"`
	ListingType  *string  `json:"listing_type" binding:"omitempty,oneof=sale rent"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// UpdateProperty applies partial changes to one of the requesting user's
// listings. A property owned by someone else reports not found.
func (h *Handler) UpdateProperty(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req propertyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	property, found, err := h.db.GetProperty(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}
	if !found || property.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	oldCity := property.City
	oldStatus := property.Status
	oldListingType := property.ListingType

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.Status != nil {
		property.Status = *req.Status
	}
	if req.PropertyType != nil {
		property.PropertyType = *req.PropertyType
	}
	if req.Price != nil {
		property.Price = *req.Price
	}
	if req.ListingType != nil {
		property.ListingType = *req.ListingType
	}
	if req.Latitude != nil {
		property.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		property.Longitude = req.Longitude
	}

	if err := h.db.SaveProperty(property); err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	if property.ListingType != oldListingType {
		h.accumulator.ApplyDelta(userID, map[string]float64{
			listingTypeField(oldListingType):      -1,
			listingTypeField(property.ListingType): 1,
		})
	}
	// City edits and status flips both change the set of active cities.
	if property.City != oldCity || property.Status != oldStatus {
		h.accumulator.RecomputeTotalCities(userID)
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty removes one of the requesting user's listings and rolls the
// property counters back.
func (h *Handler) DeleteProperty(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	property, found, err := h.db.GetProperty(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	if !found || property.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	deleted, err := h.db.DeleteProperty(property.ID, userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	h.accumulator.ApplyDelta(userID, map[string]float64{
		userstats.FieldTotalProperties:         -1,
		listingTypeField(property.ListingType): -1,
	})
	h.accumulator.RecomputeTotalCities(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// NearbyProperties returns active geolocated listings within a radius of a
// point, nearest first.
func (h *Handler) NearbyProperties(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	radiusKm, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "5"), 64)
	if err != nil || radiusKm <= 0 {
		radiusKm = 5
	}

	properties, err := h.db.ListPropertiesWithCoordinates()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}

	nearby := geometry.FilterNearby(properties, lat, lng, radiusKm)
	if nearby == nil {
		nearby = []geometry.PropertyDistance{}
	}
	c.JSON(http.StatusOK, nearby)
}
