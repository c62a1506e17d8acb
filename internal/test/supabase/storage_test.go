package supabase_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"tarot-readings-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co", "service-role-key", "reading-photos")
	assert.NoError(t, err)

	url := client.GetPublicURL("users/abc/readings/def/photo.jpg")
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/reading-photos/users/abc/readings/def/photo.jpg", url)
}

func TestStorageClient_TrimsTrailingSlash(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co/", "service-role-key", "reading-photos")
	assert.NoError(t, err)

	url := client.GetPublicURL("photo.jpg")
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/reading-photos/photo.jpg", url)
}

func TestRequestEventPayloads(t *testing.T) {
	requestID := uuid.New()
	readerID := uuid.New()

	paid := supabase.RequestPaidPayload(requestID)
	assert.Equal(t, requestID.String(), paid["request_id"])
	assert.Equal(t, "awaiting_claim", paid["status"])

	claimed := supabase.RequestClaimedPayload(requestID, readerID)
	assert.Equal(t, "claimed", claimed["status"])
	assert.Equal(t, readerID.String(), claimed["reader_id"])

	fulfilled := supabase.RequestFulfilledPayload(requestID, "https://example.com/photo.jpg")
	assert.Equal(t, "fulfilled", fulfilled["status"])
	assert.Equal(t, "https://example.com/photo.jpg", fulfilled["photo_url"])

	released := supabase.RequestReleasedPayload(requestID)
	assert.Equal(t, "awaiting_claim", released["status"])

	cancelled := supabase.RequestCancelledPayload(requestID)
	assert.Equal(t, "cancelled", cancelled["status"])
}
