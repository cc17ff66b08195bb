package handlers

import (
	"net/http"
	"time"

	"github.com/banking/credit-scoring-engine/config"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/gin-gonic/gin"
)

type InfoHandler struct {
	info types.InfoResponse
}

// NewInfoHandler captures the build and runtime facts served at /actuator/info.
func NewInfoHandler(cfg *config.Config, startedAt time.Time) *InfoHandler {
	return &InfoHandler{
		info: types.InfoResponse{
			Service:       cfg.Health.ServiceName,
			Version:       cfg.Server.Version,
			Environment:   string(cfg.Server.Environment),
			ReadinessMode: string(cfg.Health.ReadinessMode),
			StartedAt:     startedAt.UTC().Format(time.RFC3339),
		},
	}
}

// Info godoc
// @Summary Service info
// @Tags actuator
// @Produce json
// @Success 200 {object} types.InfoResponse
// @Router /actuator/info [get]
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
