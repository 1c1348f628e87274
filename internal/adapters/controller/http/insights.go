package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/gin-gonic/gin"
)

type insightsService interface {
	EventInsights(ctx context.Context, userID string, window time.Duration) (*dto.EventInsights, error)
}

type goatedService interface {
	Predict(ctx context.Context, window time.Duration) (*dto.GoatedPrediction, error)
}

type InsightsHandler struct {
	insights insightsService
	goated   goatedService
}

func NewInsightsHandler(insights insightsService, goated goatedService) *InsightsHandler {
	return &InsightsHandler{insights: insights, goated: goated}
}

func (h *InsightsHandler) EventInsights(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	insights, err := h.insights.EventInsights(c.Request.Context(), userID, windowParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (h *InsightsHandler) Goated(c *gin.Context) {
	prediction, err := h.goated.Predict(c.Request.Context(), windowParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

func windowParam(c *gin.Context) time.Duration {
	hours, err := strconv.Atoi(c.DefaultQuery("window_hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
