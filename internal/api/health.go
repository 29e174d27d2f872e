package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the liveness probe
type HealthHandler struct {
	version string
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Live reports that the process is serving requests
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// RegisterHealthRoutes registers health check related routes
func (h *HealthHandler) RegisterHealthRoutes(router gin.IRoutes) {
	router.GET("/health", h.Live)
}
