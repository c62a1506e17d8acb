package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/store"
)

type symbolOccurrenceResponse struct {
	Symbol          string    `json:"symbol"`
	OccurrenceCount int64     `json:"occurrence_count"`
	LastSeenAt      time.Time `json:"last_seen_at"`
}

type symbolListResponse struct {
	Symbols []symbolOccurrenceResponse `json:"symbols"`
}

type SymbolsHandler struct {
	dbClient *store.DatabaseClient
}

func NewSymbolsHandler(dbClient *store.DatabaseClient) *SymbolsHandler {
	return &SymbolsHandler{dbClient: dbClient}
}

// ListSymbols godoc
// @Summary     List own symbol occurrences
// @Description Returns the authenticated user's accumulated card-symbol counters, most frequent first
// @Tags        symbols
// @Produce     json
// @Security    Bearer
// @Success     200 {object} symbolListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /symbols [get]
func (h *SymbolsHandler) ListSymbols(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	occurrences, err := h.dbClient.ListSymbolOccurrences(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list symbols",
			Message: err.Error(),
		})
		return
	}

	response := symbolListResponse{
		Symbols: make([]symbolOccurrenceResponse, len(occurrences)),
	}
	for i, o := range occurrences {
		response.Symbols[i] = symbolOccurrenceResponse{
			Symbol:          o.Symbol,
			OccurrenceCount: o.OccurrenceCount,
			LastSeenAt:      o.LastSeenAt,
		}
	}

	c.JSON(http.StatusOK, response)
}
