package handler

import (
	"context"
	"net/http"
	"strconv"

	"houseprice/internal/model"

	"github.com/gin-gonic/gin"
)

// PredictionHistory reads the prediction audit log
type PredictionHistory interface {
	RecentPredictions(ctx context.Context, limit int) ([]model.PredictionLog, error)
}

// HistoryHandler exposes recent audit log entries
type HistoryHandler struct {
	history      PredictionHistory
	defaultLimit int
	maxLimit     int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history PredictionHistory, defaultLimit, maxLimit int) *HistoryHandler {
	return &HistoryHandler{
		history:      history,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Recent handles GET /api/v1/predictions
func (h *HistoryHandler) Recent(c *gin.Context) {
	limit := h.defaultLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	entries, err := h.history.RecentPredictions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get predictions: " + err.Error()})
		return
	}
	if entries == nil {
		entries = []model.PredictionLog{}
	}

	c.JSON(http.StatusOK, gin.H{"predictions": entries, "count": len(entries)})
}
