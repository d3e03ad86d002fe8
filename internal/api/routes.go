package api

import (
	"estateview/server/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(router *gin.Engine, db *database.Database, logger *logrus.Logger, windowDays int) {
	handler := NewHandler(db, logger, windowDays)

	api := router.Group("/api")
	{
		api.GET("/properties", handler.ListProperties)
		api.POST("/properties", handler.CreateProperty)
		api.GET("/properties/:id", handler.GetProperty)
		api.PUT("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.POST("/properties/:id/view", handler.RecordView)
		api.GET("/properties/:id/analytics", handler.GetPropertyAnalytics)
		api.GET("/search/nearby", handler.NearbyProperties)

		api.GET("/users/:id/analytics", handler.GetUserAnalytics)
		api.GET("/users/:id/stats", handler.GetUserStats)
		api.GET("/users/:id/tour-stats", handler.GetTourStatistics)

		api.POST("/tours", handler.CreateTour)
		api.GET("/tours", handler.ListTours)
		api.PATCH("/tours/:id/status", handler.UpdateTourStatus)
		api.POST("/tours/:id/feedback", handler.AddTourFeedback)

		api.POST("/leads", handler.CreateLead)
		api.PATCH("/leads/:id/status", handler.UpdateLeadStatus)
		api.DELETE("/leads/:id", handler.DeleteLead)

		api.POST("/revenue", handler.CreateRevenue)

		api.POST("/favorites", handler.AddFavorite)
		api.DELETE("/favorites/:property_id", handler.RemoveFavorite)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
