package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"estateview/server/internal/database"
	"estateview/server/internal/models"
	"estateview/server/internal/tours"
	"estateview/server/internal/userstats"
	"estateview/server/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// userIDHeader carries the authenticated user id, set by the fronting auth
// layer. Authentication itself happens outside this service.
const userIDHeader = "X-User-ID"

type Handler struct {
	db          *database.Database
	logger      *logrus.Logger
	recorder    *views.Recorder
	analytics   *views.Aggregator
	lifecycle   *tours.StateMachine
	tourStats   *tours.StatisticsAggregator
	accumulator *userstats.Accumulator
	windowDays  int
}

func NewHandler(db *database.Database, logger *logrus.Logger, windowDays int) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if windowDays <= 0 {
		windowDays = views.DefaultWindowDays
	}

	return &Handler{
		windowDays:  windowDays,
		db:          db,
		logger:      logger,
		recorder:    views.NewRecorder(db, logger),
		analytics:   views.NewAggregator(db, logger),
		lifecycle:   tours.NewStateMachine(db, logger),
		tourStats:   tours.NewStatisticsAggregator(db),
		accumulator: userstats.NewAccumulator(db, logger),
	}
}

func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return "", false
	}
	return userID, true
}

type viewRequest struct {
	SessionID string `json:"session_id"`
}

// RecordView registers a property view for the caller's identity: the
// authenticated user id when present, otherwise the anonymous session token
// from the request body.
func (h *Handler) RecordView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	identity := views.Identity{
		UserID:    c.GetHeader(userIDHeader),
		SessionID: req.SessionID,
	}

	result, err := h.recorder.RecordView(c.Param("id"), identity)
	if err != nil {
		switch {
		case errors.Is(err, views.ErrMissingIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A session id is required for anonymous views"})
		case errors.Is(err, views.ErrPropertyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		default:
			h.logger.WithError(err).Error("Failed to record view")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record view"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPropertyAnalytics returns the windowed view report for a property.
func (h *Handler) GetPropertyAnalytics(c *gin.Context) {
	daysBack, err := strconv.Atoi(c.Query("days"))
	if err != nil || daysBack <= 0 {
		daysBack = h.windowDays
	}

	analytics, err := h.analytics.PropertyAnalytics(c.Param("id"), daysBack)
	if err != nil {
		if errors.Is(err, views.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get property analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property analytics"})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetUserAnalytics returns view activity aggregated across a user's
// properties.
func (h *Handler) GetUserAnalytics(c *gin.Context) {
	analytics, err := h.analytics.UserAnalytics(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get user analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user analytics"})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetUserStats returns the denormalized dashboard counters for a user. Users
// without a stats row yet get zeroes.
func (h *Handler) GetUserStats(c *gin.Context) {
	stats, found, err := h.db.GetUserStats(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get user stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user stats"})
		return
	}
	if !found {
		stats = &models.UserStats{UserID: c.Param("id")}
	}

	c.JSON(http.StatusOK, stats)
}

// GetTourStatistics returns the agent's tour pipeline rollup.
func (h *Handler) GetTourStatistics(c *gin.Context) {
	stats, err := h.tourStats.Statistics(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get tour statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tour statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type tourRequest struct {
	PropertyID     string `json:"property_id" binding:"required"`
	VisitorName    string `json:"visitor_name" binding:"required"`
	VisitorEmail   string `json:"visitor_email" binding:"required,email"`
	VisitorPhone   string `json:"visitor_phone"`
	VisitorMessage string `json:"visitor_message"`
	TourDate       string `json:"tour_date" binding:"required"`
	TourTime       string `json:"tour_time" binding:"required"`
}

// CreateTour books a tour on behalf of a visitor. The owning agent is
// resolved from the property.
func (h *Handler) CreateTour(c *gin.Context) {
	var req tourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if _, err := time.Parse("2006-01-02", req.TourDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tour_date must be YYYY-MM-DD"})
		return
	}

	owner, found, err := h.db.PropertyOwner(req.PropertyID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to look up property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book tour"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	tour := &models.Tour{
		ID:              uuid.NewString(),
		PropertyID:      req.PropertyID,
		PropertyOwnerID: owner,
		VisitorName:     req.VisitorName,
		VisitorEmail:    req.VisitorEmail,
		VisitorPhone:    req.VisitorPhone,
		VisitorMessage:  req.VisitorMessage,
		TourDate:        req.TourDate,
		TourTime:        req.TourTime,
		Status:          models.TourStatusPending,
	}
	if err := h.db.CreateTour(tour); err != nil {
		h.logger.WithError(err).Error("Failed to create tour")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book tour"})
		return
	}

	c.JSON(http.StatusCreated, tour)
}

// ListTours returns the requesting agent's tours.
func (h *Handler) ListTours(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	list, err := h.db.ListToursForOwner(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tours")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tours"})
		return
	}

	c.JSON(http.StatusOK, list)
}

type tourStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTourStatus moves one of the requesting agent's tours to a new
// status.
func (h *Handler) UpdateTourStatus(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req tourStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if err := h.lifecycle.UpdateStatus(c.Param("id"), req.Status, userID); err != nil {
		switch {
		case errors.Is(err, tours.ErrTourNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Tour not found"})
		case errors.Is(err, tours.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, tours.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Failed to update tour status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tour status"})
		}
		return
	}

	tour, _, err := h.db.GetTour(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to reload tour")
		c.JSON(http.StatusOK, gin.H{"message": "Tour status updated"})
		return
	}

	c.JSON(http.StatusOK, tour)
}

// AddTourFeedback attaches the agent's post-tour report.
func (h *Handler) AddTourFeedback(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var fb models.TourFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if err := h.lifecycle.AddFeedback(c.Param("id"), fb, userID); err != nil {
		switch {
		case errors.Is(err, tours.ErrTourNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Tour not found"})
		case errors.Is(err, tours.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Failed to save tour feedback")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save tour feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback saved"})
}
