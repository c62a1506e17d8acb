package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/config"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/store"
)

// SweepHandler enforces the passive TTL fields. It is driven by an
// external scheduler (cron hitting the endpoint), not an in-process timer.
type SweepHandler struct {
	config   *config.Config
	dbClient *store.DatabaseClient
}

func NewSweepHandler(cfg *config.Config, dbClient *store.DatabaseClient) *SweepHandler {
	return &SweepHandler{
		config:   cfg,
		dbClient: dbClient,
	}
}

// Sweep godoc
// @Summary     Expire overdue requests
// @Description Marks unclaimed requests past their TTL as expired and releases claims past their deadline back to the bank. Authenticated by the operator token.
// @Tags        internal
// @Produce     json
// @Param       Authorization header string true "Operator token"
// @Success     200 {object} models.SweepResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /internal/sweep [post]
func (h *SweepHandler) Sweep(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)

	if h.config.SweepToken == "" || token != h.config.SweepToken {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid operator token"})
		return
	}

	expired, released, err := h.dbClient.SweepExpired(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "sweep failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SweepResponse{
		Expired:  expired,
		Released: released,
	})
}
