package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/middleware"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
	"tarot-readings-backend/internal/store"
)

type RequestsHandler struct {
	manager  *readings.Manager
	dbClient *store.DatabaseClient
}

func NewRequestsHandler(manager *readings.Manager, dbClient *store.DatabaseClient) *RequestsHandler {
	return &RequestsHandler{
		manager:  manager,
		dbClient: dbClient,
	}
}

// CreateRequest godoc
// @Summary     Create a reading request
// @Description Creates a new reading request. With a saved payment method the request goes straight to awaiting_claim; otherwise a Stripe setup intent is opened and the client secret is returned for the card-entry flow.
// @Tags        requests
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateReadingRequestRequest true "Request details"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests [post]
func (h *RequestsHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	email, _ := c.Get(middleware.EmailKey)
	emailStr, _ := email.(string)
	if emailStr == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "email not found in token"})
		return
	}

	var req models.CreateReadingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	request, err := h.manager.Create(userID, emailStr, &req)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, true),
	})
}

// ListRequests godoc
// @Summary     List own reading requests
// @Description Returns the authenticated user's reading requests, newest first, optionally filtered by status
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by request status"
// @Success     200 {object} models.ReadingRequestListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests [get]
func (h *RequestsHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.dbClient.ListUserRequests(userID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list requests",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, listResponse(requests, userID.String()))
}

// ListFulfilledRequests godoc
// @Summary     List own fulfilled readings
// @Description Returns the authenticated user's fulfilled reading requests with their full payloads
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ReadingRequestListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/fulfilled [get]
func (h *RequestsHandler) ListFulfilledRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.dbClient.ListFulfilledRequests(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list fulfilled requests",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, listResponse(requests, userID.String()))
}

// GetRequest godoc
// @Summary     Get a reading request
// @Description Returns one request, visible to the owning requester or the claiming reader
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.ReadingRequestResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /requests/{request_id} [get]
func (h *RequestsHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	request, err := h.dbClient.GetReadingRequestForParticipant(requestID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "request not found",
			Message: err.Error(),
		})
		return
	}

	includeSecret := request.UserID == userID
	c.JSON(http.StatusOK, models.NewReadingRequestResponse(request, includeSecret))
}

// CancelRequest godoc
// @Summary     Cancel a reading request
// @Description Cancels an own request while it is still pending payment or awaiting a claim
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/cancel [post]
func (h *RequestsHandler) CancelRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	request, err := h.manager.Cancel(requestID, userID)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, false),
	})
}

// MarkPaid godoc
// @Summary     Mark a request paid
// @Description Transitions the caller's own pending_payment request to awaiting_claim after verifying with Stripe that the setup intent succeeded. Normally driven by the Stripe webhook; exposed for deployments without webhook delivery.
// @Tags        requests
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Success     200 {object} models.MutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/mark-paid [post]
func (h *RequestsHandler) MarkPaid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	request, err := h.manager.MarkPaidByOwner(requestID, userID)
	if err != nil {
		mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Success:        true,
		ReadingRequest: models.NewReadingRequestResponse(request, false),
	})
}

func listResponse(requests []models.ReadingRequest, viewerID string) models.ReadingRequestListResponse {
	response := models.ReadingRequestListResponse{
		Requests: make([]models.ReadingRequestResponse, len(requests)),
	}
	for i := range requests {
		includeSecret := requests[i].UserID.String() == viewerID
		response.Requests[i] = *models.NewReadingRequestResponse(&requests[i], includeSecret)
	}
	return response
}
