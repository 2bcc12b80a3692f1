package router

import (
	"net/http"

	"github.com/ahvar/team-activity-monitor/internal/http/handler"
	"github.com/ahvar/team-activity-monitor/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		activityHandler := handler.NewActivityHandler(services.Activity())
		ActivityRouter(v1, activityHandler)
	}
}
