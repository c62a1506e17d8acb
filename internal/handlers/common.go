package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tarot-readings-backend/internal/middleware"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
)

// currentUserID pulls the authenticated user id out of the gin context.
// Writes the error response itself when the context is incomplete.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func requestIDParam(c *gin.Context) (uuid.UUID, bool) {
	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request id"})
		return uuid.Nil, false
	}
	return requestID, true
}

// mutationError maps a lifecycle failure onto the response. Expected
// business-rule rejections come back as a failed envelope the UI can show
// inline; anything else is a real server error.
func mutationError(c *gin.Context, err error) {
	if readings.IsBusinessError(err) {
		c.JSON(http.StatusOK, models.MutationResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "request failed",
		Message: err.Error(),
	})
}
