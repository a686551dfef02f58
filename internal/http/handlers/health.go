package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	PingDB    PingFunc
	PingRedis PingFunc
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails when a dependency is unreachable so load balancers stop
// routing to this instance.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if h.PingDB != nil {
		if err := h.PingDB(checkCtx); err != nil {
			checks["db"] = "down"
			ready = false
		} else {
			checks["db"] = "ok"
		}
	}

	if h.PingRedis != nil {
		if err := h.PingRedis(checkCtx); err != nil {
			checks["redis"] = "down"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{"ready": ready, "checks": checks})
}
