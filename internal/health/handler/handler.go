package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Serving states reported by the readiness probe.
const (
	StatusServing    = "SERVING"
	StatusNotServing = "NOT_SERVING"
)

const checkTimeout = 3 * time.Second

// Pinger reports database reachability (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StorageChecker reports media bucket reachability (e.g. *storage.Store).
type StorageChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves liveness and readiness probes for load balancers and orchestrators.
type Handler struct {
	pinger  Pinger
	storage StorageChecker
}

// NewHandler returns a health handler. A nil pinger or storage checker is skipped.
func NewHandler(pinger Pinger, storage StorageChecker) *Handler {
	return &Handler{pinger: pinger, storage: storage}
}

// Register mounts /healthz and /readyz.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.live)
	r.GET("/readyz", h.ready)
}

func (h *Handler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": StatusServing})
}

func (h *Handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if h.pinger != nil {
		if err := h.pinger.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusNotServing, "component": "database"})
			return
		}
	}
	if h.storage != nil {
		if err := h.storage.HealthCheck(ctx); err != nil {
			log.Printf("health: storage check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusNotServing, "component": "storage"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": StatusServing})
}
