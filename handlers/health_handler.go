package handlers

import (
	"context"

	"github.com/banking/credit-scoring-engine/services"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker is the part of services.HealthService the handlers need.
type HealthChecker interface {
	Check(ctx context.Context, name string) (types.Health, error)
	CheckAll(ctx context.Context) types.CompositeHealth
}

type HealthHandler struct {
	healthService HealthChecker
}

func NewHealthHandler(healthService HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// Health godoc
// @Summary Composite health
// @Description Runs every registered indicator and aggregates the worst status.
// @Tags actuator
// @Produce json
// @Success 200 {object} types.CompositeHealth "UP or DEGRADED"
// @Failure 503 {object} types.CompositeHealth "At least one indicator is DOWN"
// @Router /actuator/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	health := h.healthService.CheckAll(c.Request.Context())
	c.JSON(health.Status.HTTPStatus(), health)
}

// Indicator godoc
// @Summary Single health indicator
// @Description Runs one indicator. liveness never checks dependencies; readiness reports model and bureau status.
// @Tags actuator
// @Produce json
// @Param name path string true "Indicator name" Enums(liveness, readiness)
// @Success 200 {object} types.Health
// @Failure 404 {object} types.ErrorResponse "Unknown indicator"
// @Failure 503 {object} types.Health "Indicator is DOWN"
// @Router /actuator/health/{name} [get]
func (h *HealthHandler) Indicator(c *gin.Context) {
	h.respondIndicator(c, c.Param("name"))
}

// LivenessCheck handles the kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	h.respondIndicator(c, services.LivenessIndicatorName)
}

// ReadinessCheck handles the kubernetes readiness probe
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.respondIndicator(c, services.ReadinessIndicatorName)
}

func (h *HealthHandler) respondIndicator(c *gin.Context, name string) {
	health, err := h.healthService.Check(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(health.Status.HTTPStatus(), health)
}
