package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type poolStats struct {
	Open      int   `json:"open"`
	InUse     int   `json:"inUse"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"waitCount"`
}

// GET /health reports store reachability, pool usage and query counters.
func (h *handlers) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			_ = c.Error(err)
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
		s := h.Store.Stats()
		body["pool"] = poolStats{Open: s.OpenConnections, InUse: s.InUse, Idle: s.Idle, WaitCount: s.WaitCount}
	}
	if h.Counters != nil {
		body["queries"] = h.Counters.Snapshot()
	}
	c.JSON(status, body)
}
