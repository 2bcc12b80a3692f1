package router

import (
	"github.com/ahvar/team-activity-monitor/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func ActivityRouter(router *gin.RouterGroup, handler *handler.ActivityHandler) {
	router.POST("/questions", handler.Ask)
	router.GET("/members", handler.Members)
	router.GET("/members/:name/activity", handler.Report)
	router.GET("/integrations/status", handler.IntegrationStatus)
}
