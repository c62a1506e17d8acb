package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/spreads"
)

type SpreadsHandler struct{}

func NewSpreadsHandler() *SpreadsHandler {
	return &SpreadsHandler{}
}

// ListSpreads godoc
// @Summary     List spread configurations
// @Description Returns the static catalog of spread types with card counts and prices
// @Tags        spreads
// @Produce     json
// @Success     200 {object} models.SpreadListResponse
// @Router      /spreads [get]
func (h *SpreadsHandler) ListSpreads(c *gin.Context) {
	configs := spreads.ListSpreadConfigs()

	response := models.SpreadListResponse{
		Spreads: make([]models.SpreadConfigResponse, len(configs)),
	}
	for i, cfg := range configs {
		response.Spreads[i] = models.SpreadConfigResponse{
			Type:        cfg.Type,
			Label:       cfg.Label,
			CardCount:   cfg.CardCount,
			Price:       cfg.Price,
			Description: cfg.Description,
		}
	}

	c.JSON(http.StatusOK, response)
}
