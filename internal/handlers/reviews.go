package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
	"tarot-readings-backend/internal/store"
)

type ReviewsHandler struct {
	manager  *readings.Manager
	dbClient *store.DatabaseClient
}

func NewReviewsHandler(manager *readings.Manager, dbClient *store.DatabaseClient) *ReviewsHandler {
	return &ReviewsHandler{
		manager:  manager,
		dbClient: dbClient,
	}
}

// ReviewRequest godoc
// @Summary     Review a fulfilled reading
// @Description Attaches the requester's one-time review (rating 1-5) to a fulfilled request and folds it into the reader's aggregate rating
// @Tags        reviews
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       request body models.ReviewReadingRequestRequest true "Rating and optional text"
// @Success     200 {object} models.ReviewMutationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /requests/{request_id}/review [post]
func (h *ReviewsHandler) ReviewRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	var req models.ReviewReadingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	_, review, err := h.manager.Review(requestID, userID, &req)
	if err != nil {
		if readings.IsBusinessError(err) {
			c.JSON(http.StatusOK, models.ReviewMutationResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "request failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReviewMutationResponse{
		Success: true,
		Review:  review,
	})
}

// ListReaderReviews godoc
// @Summary     List a reader's reviews
// @Description Returns the reviews attached to a reader's fulfilled requests, newest first
// @Tags        reviews
// @Produce     json
// @Security    Bearer
// @Param       reader_id path string true "Reader ID (UUID)"
// @Success     200 {object} models.ReaderReviewsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /readers/{reader_id}/reviews [get]
func (h *ReviewsHandler) ListReaderReviews(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	readerID, err := uuid.Parse(c.Param("reader_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid reader id"})
		return
	}

	reviews, err := h.dbClient.ListReaderReviews(readerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list reviews",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReaderReviewsResponse{
		ReaderID: readerID.String(),
		Reviews:  reviews,
	})
}

// GetReaderRating godoc
// @Summary     Get a reader's rating aggregate
// @Description Returns the running review aggregate (count, average, per-star buckets) for a reader
// @Tags        reviews
// @Produce     json
// @Security    Bearer
// @Param       reader_id path string true "Reader ID (UUID)"
// @Success     200 {object} models.ReaderRatingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /readers/{reader_id}/rating [get]
func (h *ReviewsHandler) GetReaderRating(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	readerID, err := uuid.Parse(c.Param("reader_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid reader id"})
		return
	}

	rating, err := h.dbClient.GetReaderRating(readerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get rating",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReaderRatingResponse{
		ReaderID:   rating.ReaderID.String(),
		TotalCount: rating.TotalCount,
		Average:    rating.Average(),
		Rating1:    rating.Rating1,
		Rating2:    rating.Rating2,
		Rating3:    rating.Rating3,
		Rating4:    rating.Rating4,
		Rating5:    rating.Rating5,
	})
}
