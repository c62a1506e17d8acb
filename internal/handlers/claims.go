package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
	"tarot-readings-backend/internal/store"
)

const (
	defaultBankLimit = 20
	maxBankLimit     = 100
)

// ClaimsHandler serves the reader side of the marketplace: the request
// bank, claiming, releasing and fulfilling.
type ClaimsHandler struct {
	manager  *readings.Manager
	dbClient *store.DatabaseClient
}

func NewClaimsHandler(manager *readings.Manager, dbClient *store.DatabaseClient) *ClaimsHandler {
	return &ClaimsHandler{
		manager:  manager,
		dbClient: dbClient,
	}
}

// ListAvailableRequests godoc
// @Summary     List claimable requests
// @Description Returns the paginated bank of awaiting_claim requests, oldest first
// @Tags        claims
// @Produce     json
// @Security    Bearer
// @Param       limit query int false "Page size (default 20, max 100)"
// @Param       offset query int false "Offset"
// @Success     200 {object} models.ReadingRequestListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/available [get]
func (h *ClaimsHandler) ListAvailableRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultBankLimit)))
	if err != nil || limit <= 0 {
		limit = defaultBankLimit
	}
	if limit > maxBankLimit {
		limit = maxBankLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	requests, err := h.dbClient.ListAvailableRequests(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list available requests",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, listResponse(requests, userID.String()))
}

// ListClaimedRequests godoc
// @Summary     List own claimed requests
// @Description Returns the requests currently claimed by the authenticated reader, nearest deadline first
// @Tags        claims
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ReadingRequestListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/claimed [get]
func (h *ClaimsHandler) ListClaimedRequests(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.dbClient.ListClaimedRequests(readerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list claimed requests",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, listResponse(requests, readerID.String()))
}

// ClaimRequest godoc
// @Summary     Claim a reading request
// @Description Takes an exclusive 24h claim on an awaiting_claim request. The reader must have a fully onboarded connected account. No money moves until fulfillment.
// @Tags        claims
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/claim [post]
func (h *ClaimsHandler) ClaimRequest(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	request, err := h.manager.Claim(requestID, readerID)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, false),
	})
}

// ReleaseRequest godoc
// @Summary     Release a claimed request
// @Description Returns a claimed request to the bank, clearing the claim. No payment side effects.
// @Tags        claims
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/release [post]
func (h *ClaimsHandler) ReleaseRequest(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	request, err := h.manager.Release(requestID, readerID)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, false),
	})
}

// FulfillRequest godoc
// @Summary     Fulfill a claimed request
// @Description Delivers the reading and captures payment on the reader's connected account in the same operation. On any payment failure the request stays claimed so the reader can retry or release.
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       request body models.FulfillReadingRequestRequest true "Cards, interpretation and optional photo URL"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/fulfill [post]
func (h *ClaimsHandler) FulfillRequest(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	var req models.FulfillReadingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	request, err := h.manager.Fulfill(requestID, readerID, &req)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, false),
	})
}
