package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahvar/team-activity-monitor/internal/http/dto"
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service"
	"github.com/gin-gonic/gin"
)

const statusProbeTimeout = 10 * time.Second

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Ask answers a free-text question. Questions about nobody on the roster are
// still a 200; the answer explains who can be asked about.
func (h *ActivityHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := h.activityService.Ask(ctx, req.Question)
	c.JSON(http.StatusOK, dto.ToAnswerResponse(answer))
}

func (h *ActivityHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		slog.WarnContext(ctx, "invalid report query", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent := model.IntentActivitySummary
	if query.Intent != "" {
		intent = model.Intent(query.Intent)
	}
	timeRange := model.TimeRangeRecent
	if query.TimeRange != "" {
		timeRange = model.TimeRange(query.TimeRange)
	}

	answer, err := h.activityService.Report(ctx, c.Param("name"), intent, timeRange)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMember) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToAnswerResponse(answer))
}

func (h *ActivityHandler) Members(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToMembersResponse(h.activityService.Members()))
}

func (h *ActivityHandler) IntegrationStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusProbeTimeout)
	defer cancel()

	status := h.activityService.TestConnections(ctx)
	c.JSON(http.StatusOK, dto.ToIntegrationStatusResponse(status))
}
