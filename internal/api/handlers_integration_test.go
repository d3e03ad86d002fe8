package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"estateview/server/internal/database"
	"estateview/server/internal/models"
	"estateview/server/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	router := gin.New()
	SetupRoutes(router, db, logger, views.DefaultWindowDays)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func createPropertyViaAPI(t *testing.T, router *gin.Engine, userID, city, listingType string) models.Property {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/properties", userID, gin.H{
		"title":        "Bright family home",
		"city":         city,
		"listing_type": listingType,
		"price":        425000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var p models.Property
	decode(t, w, &p)
	return p
}

func TestViewRecordingEndToEnd(t *testing.T) {
	router := setupTestRouter(t)
	p := createPropertyViaAPI(t, router, "agent_1", "Amsterdam", "sale")

	viewPath := fmt.Sprintf("/api/properties/%s/view", p.ID)

	// Session s1 views twice; only the first view counts.
	w := doRequest(t, router, http.MethodPost, viewPath, "", gin.H{"session_id": "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Recorded bool   `json:"recorded"`
		Message  string `json:"message"`
	}
	decode(t, w, &result)
	assert.True(t, result.Recorded)

	w = doRequest(t, router, http.MethodPost, viewPath, "", gin.H{"session_id": "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.False(t, result.Recorded)
	assert.Equal(t, "already recorded", result.Message)

	// A second anonymous session counts separately.
	w = doRequest(t, router, http.MethodPost, viewPath, "", gin.H{"session_id": "s2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/properties/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded models.Property
	decode(t, w, &loaded)
	assert.Equal(t, int64(2), loaded.Views)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/properties/%s/analytics?days=30", p.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analytics models.PropertyViewAnalytics
	decode(t, w, &analytics)
	assert.Equal(t, int64(2), analytics.TotalViews)
	assert.Equal(t, int64(2), analytics.RecentViews)
	assert.Equal(t, int64(2), analytics.PeakViews)

	var sum int64
	for _, count := range analytics.ViewsByDay {
		sum += count
	}
	assert.Equal(t, analytics.RecentViews, sum)
}

func TestRecordView_RequiresIdentity(t *testing.T) {
	router := setupTestRouter(t)
	p := createPropertyViaAPI(t, router, "agent_1", "Amsterdam", "sale")

	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/view", p.ID), "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordView_UnknownProperty(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/properties/missing/view", "", gin.H{"session_id": "s1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTourLifecycleEndToEnd(t *testing.T) {
	router := setupTestRouter(t)
	p := createPropertyViaAPI(t, router, "agent_1", "Amsterdam", "sale")

	w := doRequest(t, router, http.MethodPost, "/api/tours", "", gin.H{
		"property_id":   p.ID,
		"visitor_name":  "Jos Visser",
		"visitor_email": "jos@example.com",
		"tour_date":     "2030-01-15",
		"tour_time":     "14:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tour models.Tour
	decode(t, w, &tour)
	assert.Equal(t, models.TourStatusPending, tour.Status)
	assert.Equal(t, "agent_1", tour.PropertyOwnerID)

	statusPath := fmt.Sprintf("/api/tours/%s/status", tour.ID)

	// A non-owner cannot move the tour, and cannot tell it exists.
	w = doRequest(t, router, http.MethodPatch, statusPath, "intruder", gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Skipping confirmation is rejected.
	w = doRequest(t, router, http.MethodPatch, statusPath, "agent_1", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodPatch, statusPath, "agent_1", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tour)
	assert.Equal(t, models.TourStatusConfirmed, tour.Status)
	assert.NotNil(t, tour.ConfirmedAt)
	assert.Nil(t, tour.CompletedAt)

	w = doRequest(t, router, http.MethodPatch, statusPath, "agent_1", gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tour)
	assert.Equal(t, models.TourStatusCompleted, tour.Status)
	assert.NotNil(t, tour.ConfirmedAt)
	assert.NotNil(t, tour.CompletedAt)

	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/tours/%s/feedback", tour.ID), "agent_1", gin.H{
		"feedback": "Very interested",
		"rating":   5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/users/agent_1/tour-stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.TourStatistics
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalTours)
	assert.Equal(t, int64(1), stats.CompletedTours)
	assert.Equal(t, int64(100), stats.ConversionRate)
}

func TestUserStatsAccumulation(t *testing.T) {
	router := setupTestRouter(t)

	// Three listings: two for sale, one for rent.
	p1 := createPropertyViaAPI(t, router, "agent_1", "Pune", "sale")
	createPropertyViaAPI(t, router, "agent_1", "pune ", "sale")
	createPropertyViaAPI(t, router, "agent_1", "Mumbai", "rent")

	w := doRequest(t, router, http.MethodGet, "/api/users/agent_1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.UserStats
	decode(t, w, &stats)
	assert.Equal(t, int64(3), stats.TotalProperties)
	assert.Equal(t, int64(2), stats.PropertiesForSale)
	assert.Equal(t, int64(1), stats.PropertiesForRent)
	// Trim-only distinctness: "Pune" and "pune" remain separate cities.
	assert.Equal(t, int64(3), stats.TotalCities)

	w = doRequest(t, router, http.MethodDelete, "/api/properties/"+p1.ID, "agent_1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/users/agent_1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &stats)
	assert.Equal(t, int64(2), stats.TotalProperties)
	assert.Equal(t, int64(1), stats.PropertiesForSale)
	assert.Equal(t, int64(1), stats.PropertiesForRent)
	assert.Equal(t, int64(2), stats.TotalCities)
}

func TestLeadPipelineStats(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/leads", "agent_1", gin.H{"name": "Ben Koper"})
	require.Equal(t, http.StatusCreated, w.Code)
	var lead models.Lead
	decode(t, w, &lead)

	w = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/leads/%s/status", lead.ID), "agent_1",
		gin.H{"status": "converted"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/users/agent_1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.UserStats
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalLeads)
	assert.Equal(t, int64(0), stats.ActiveLeads)
	assert.Equal(t, int64(1), stats.ConvertedLeads)
	assert.Equal(t, int64(1), stats.TotalCustomers)
}

func TestRevenueAccumulation(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/revenue", "agent_1", gin.H{"amount": 12500.0})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(t, router, http.MethodPost, "/api/revenue", "agent_1", gin.H{"amount": 7500.0})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/users/agent_1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.UserStats
	decode(t, w, &stats)
	assert.Equal(t, float64(20000), stats.TotalRevenue)
	assert.Equal(t, float64(20000), stats.MonthlyRevenue)
}

func TestUserAnalyticsEndpoint(t *testing.T) {
	router := setupTestRouter(t)
	p1 := createPropertyViaAPI(t, router, "agent_1", "Amsterdam", "sale")
	p2 := createPropertyViaAPI(t, router, "agent_1", "Utrecht", "rent")

	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/view", p1.ID), "", gin.H{"session_id": "s1"})
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/view", p1.ID), "", gin.H{"session_id": "s2"})
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/view", p2.ID), "viewer_1", nil)

	w := doRequest(t, router, http.MethodGet, "/api/users/agent_1/analytics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analytics models.UserViewAnalytics
	decode(t, w, &analytics)
	assert.Equal(t, int64(3), analytics.TotalViews)
	assert.Equal(t, int64(3), analytics.RecentViews)
	assert.Equal(t, int64(2), analytics.UniqueViewers)
	assert.Equal(t, int64(2), analytics.PropertyCount)
	assert.Equal(t, int64(2), analytics.AverageViewsPerProperty) // round(3/2)
}

func TestFavoritesEndpoints(t *testing.T) {
	router := setupTestRouter(t)
	p := createPropertyViaAPI(t, router, "agent_1", "Amsterdam", "sale")

	w := doRequest(t, router, http.MethodPost, "/api/favorites", "user_1", gin.H{"property_id": p.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/favorites", "user_1", gin.H{"property_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/favorites/"+p.ID, "user_1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/favorites/"+p.ID, "user_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNearbySearchEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/properties", "agent_1", gin.H{
		"title":        "Canal house",
		"city":         "Amsterdam",
		"listing_type": "sale",
		"latitude":     52.3676,
		"longitude":    4.9041,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/search/nearby?lat=52.37&lng=4.90&radius_km=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var nearby []map[string]interface{}
	decode(t, w, &nearby)
	assert.Len(t, nearby, 1)

	w = doRequest(t, router, http.MethodGet, "/api/search/nearby?lat=51.0&lng=4.0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &nearby)
	assert.Empty(t, nearby)

	w = doRequest(t, router, http.MethodGet, "/api/search/nearby", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
