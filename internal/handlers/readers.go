package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/middleware"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/store"
)

// ReadersHandler manages the reader-side profile: linking the Stripe
// connected account that claims and payouts require.
type ReadersHandler struct {
	dbClient *store.DatabaseClient
}

func NewReadersHandler(dbClient *store.DatabaseClient) *ReadersHandler {
	return &ReadersHandler{dbClient: dbClient}
}

type connectAccountRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// ConnectAccount godoc
// @Summary     Link a Stripe connected account
// @Description Stores the reader's Stripe connected account id. Onboarding state is re-checked against Stripe on every claim and fulfill.
// @Tags        readers
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body connectAccountRequest true "Connected account id"
// @Success     200 {object} map[string]string
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /readers/account [post]
func (h *ReadersHandler) ConnectAccount(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}

	email, _ := c.Get(middleware.EmailKey)
	emailStr, _ := email.(string)

	var req connectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.dbClient.EnsureProfile(readerID, emailStr); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to resolve profile",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.SetStripeAccountID(readerID, req.AccountID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to link account",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account linked"})
}
