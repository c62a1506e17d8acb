package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/store"
	"tarot-readings-backend/internal/supabase"
)

const maxPhotoSize = 10 << 20 // 10 MB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotosHandler uploads fulfillment photos to storage. The reader uploads
// before calling fulfill and passes the returned URL in the fulfill body.
type PhotosHandler struct {
	dbClient      *store.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewPhotosHandler(dbClient *store.DatabaseClient, storageClient *supabase.StorageClient) *PhotosHandler {
	return &PhotosHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// UploadPhoto godoc
// @Summary     Upload a fulfillment photo
// @Description Uploads the card-layout photo for a request the reader has claimed. Returns the public URL for the fulfill call.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID (UUID)"
// @Param       photo formData file true "Photo (jpeg, png or webp, max 10MB)"
// @Success     200 {object} models.PhotoUploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /requests/{request_id}/photo [post]
func (h *PhotosHandler) UploadPhoto(c *gin.Context) {
	readerID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	// Only the claiming reader may attach a photo.
	if _, err := h.dbClient.GetClaimedRequest(requestID, readerID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "request not found",
			Message: "request is not claimed by this reader",
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing photo",
			Message: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "photo too large"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedPhotoTypes[contentType] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported photo type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open photo",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read photo",
			Message: err.Error(),
		})
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	storagePath, publicURL, err := h.storageClient.UploadReadingPhoto(readerID, requestID, filename, contentType, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to upload photo",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.PhotoUploadResponse{
		RequestID:   requestID.String(),
		PhotoURL:    publicURL,
		StoragePath: storagePath,
	})
}
