package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; row updates on
	// reading_requests already trigger Realtime for subscribed clients.
	// Kept as the hook point for explicit event publishing later.
	return nil
}

// PublishRequestEvent notifies subscribers of a single request's channel.
func (r *RealtimeClient) PublishRequestEvent(requestID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("reading_request:%s", requestID.String())
	return r.PublishEvent(channel, event, payload)
}

// PublishUserEvent notifies a requester's or reader's own channel.
func (r *RealtimeClient) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads

func RequestPaidPayload(requestID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID.String(),
		"status":     "awaiting_claim",
	}
}

func RequestClaimedPayload(requestID, readerID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID.String(),
		"status":     "claimed",
		"reader_id":  readerID.String(),
	}
}

func RequestReleasedPayload(requestID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID.String(),
		"status":     "awaiting_claim",
	}
}

func RequestFulfilledPayload(requestID uuid.UUID, photoURL string) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID.String(),
		"status":     "fulfilled",
		"photo_url":  photoURL,
	}
}

func RequestCancelledPayload(requestID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"request_id": requestID.String(),
		"status":     "cancelled",
	}
}
