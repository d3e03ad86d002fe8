package api

import (
	"net/http"

	"estateview/server/internal/models"
	"estateview/server/internal/userstats"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// leadCountsAsActive reports whether a lead in this status is part of the
// activeLeads counter.
func leadCountsAsActive(status string) bool {
	return status == models.LeadStatusNew || status == models.LeadStatusActive
}

type leadRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateLead adds a lead for the requesting user and bumps the lead
// counters.
func (h *Handler) CreateLead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	lead := &models.Lead{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: models.LeadStatusNew,
	}
	if err := h.db.CreateLead(lead); err != nil {
		h.logger.WithError(err).Error("Failed to create lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	h.accumulator.ApplyDelta(userID, map[string]float64{
		userstats.FieldTotalLeads:  1,
		userstats.FieldActiveLeads: 1,
	})

	c.JSON(http.StatusCreated, lead)
}

type leadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new active converted lost"`
}

// UpdateLeadStatus changes a lead's pipeline status and adjusts the derived
// counters; converting a lead also counts a new customer.
func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	lead, found, err := h.db.GetLeadForOwner(c.Param("id"), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}
	if lead.Status == req.Status {
		c.JSON(http.StatusOK, lead)
		return
	}

	updated, err := h.db.UpdateLeadStatus(lead.ID, userID, req.Status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	deltas := make(map[string]float64)
	if leadCountsAsActive(lead.Status) && !leadCountsAsActive(req.Status) {
		deltas[userstats.FieldActiveLeads] = -1
	} else if !leadCountsAsActive(lead.Status) && leadCountsAsActive(req.Status) {
		deltas[userstats.FieldActiveLeads] = 1
	}
	if req.Status == models.LeadStatusConverted {
		deltas[userstats.FieldConvertedLeads] = 1
		deltas[userstats.FieldTotalCustomers] = 1
	} else if lead.Status == models.LeadStatusConverted {
		deltas[userstats.FieldConvertedLeads] = -1
		deltas[userstats.FieldTotalCustomers] = -1
	}
	h.accumulator.ApplyDelta(userID, deltas)

	lead.Status = req.Status
	c.JSON(http.StatusOK, lead)
}

// DeleteLead removes a lead and rolls its counters back.
func (h *Handler) DeleteLead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	lead, found, err := h.db.GetLeadForOwner(c.Param("id"), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	deleted, err := h.db.DeleteLead(lead.ID, userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	deltas := map[string]float64{userstats.FieldTotalLeads: -1}
	if leadCountsAsActive(lead.Status) {
		deltas[userstats.FieldActiveLeads] = -1
	}
	if lead.Status == models.LeadStatusConverted {
		deltas[userstats.FieldConvertedLeads] = -1
		deltas[userstats.FieldTotalCustomers] = -1
	}
	h.accumulator.ApplyDelta(userID, deltas)

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

type revenueRequest struct {
	PropertyID string  `json:"property_id"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// CreateRevenue records a revenue entry for the requesting user and bumps
// the revenue counters.
func (h *Handler) CreateRevenue(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req revenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	record := &models.RevenueRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: req.PropertyID,
		Amount:     req.Amount,
	}
	if err := h.db.CreateRevenue(record); err != nil {
		h.logger.WithError(err).Error("Failed to record revenue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record revenue"})
		return
	}

	h.accumulator.ApplyDelta(userID, map[string]float64{
		userstats.FieldTotalRevenue:   req.Amount,
		userstats.FieldMonthlyRevenue: req.Amount,
	})

	c.JSON(http.StatusCreated, record)
}

type favoriteRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
}

// AddFavorite bookmarks a property for the requesting user.
func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	exists, err := h.db.PropertyExists(req.PropertyID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to look up property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorite"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	favorite := &models.Favorite{UserID: userID, PropertyID: req.PropertyID}
	if err := h.db.AddFavorite(favorite); err != nil {
		h.logger.WithError(err).Error("Failed to save favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorite"})
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// RemoveFavorite drops a bookmark.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	removed, err := h.db.RemoveFavorite(userID, c.Param("property_id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to remove favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}
