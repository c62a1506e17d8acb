package models

import (
	"encoding/json"
	"time"
)

type ReadingRequestResponse struct {
	ID             string  `json:"request_id"`
	UserID         string  `json:"user_id"`
	ClaimedBy      string  `json:"claimed_by,omitempty"`
	SpreadType     string  `json:"spread_type"`
	Topic          string  `json:"topic"`
	Context        string  `json:"context,omitempty"`
	Price          int64   `json:"price"`
	PlatformFee    int64   `json:"platform_fee"`
	ReaderPayout   int64   `json:"reader_payout"`
	RequestStatus  string  `json:"request_status"`
	Cards          []Card  `json:"cards,omitempty"`
	OverallMessage string  `json:"overall_message,omitempty"`
	PhotoURL       string  `json:"photo_url,omitempty"`
	Review         *Review `json:"review,omitempty"`

	// Only returned to the owner while the request is pending_payment, so
	// the client can complete the Stripe card-entry flow.
	SetupIntentClientSecret string `json:"setup_intent_client_secret,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	ClaimDeadline *time.Time `json:"claim_deadline,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	FulfilledAt   *time.Time `json:"fulfilled_at,omitempty"`
}

// MutationResponse is the uniform envelope for every lifecycle mutation.
// Business-rule rejections come back with Success=false and a message
// rather than a transport-level error.
type MutationResponse struct {
	Success        bool                    `json:"success"`
	Message        string                  `json:"message,omitempty"`
	ReadingRequest *ReadingRequestResponse `json:"reading_request,omitempty"`
}

type ReviewMutationResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Review  *Review `json:"review,omitempty"`
}

type ReadingRequestListResponse struct {
	Requests []ReadingRequestResponse `json:"requests"`
}

type SpreadConfigResponse struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	CardCount   int    `json:"card_count"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

type SpreadListResponse struct {
	Spreads []SpreadConfigResponse `json:"spreads"`
}

type ReaderRatingResponse struct {
	ReaderID   string  `json:"reader_id"`
	TotalCount int64   `json:"total_count"`
	Average    float64 `json:"average"`
	Rating1    int64   `json:"rating_1"`
	Rating2    int64   `json:"rating_2"`
	Rating3    int64   `json:"rating_3"`
	Rating4    int64   `json:"rating_4"`
	Rating5    int64   `json:"rating_5"`
}

type ReaderReviewsResponse struct {
	ReaderID string   `json:"reader_id"`
	Reviews  []Review `json:"reviews"`
}

type PhotoUploadResponse struct {
	RequestID   string `json:"request_id"`
	PhotoURL    string `json:"photo_url"`
	StoragePath string `json:"storage_path"`
}

type SweepResponse struct {
	Expired  int64 `json:"expired"`
	Released int64 `json:"released"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewReadingRequestResponse maps the stored entity to its API shape.
// includeSecret controls whether the setup-intent client secret is exposed;
// only the owner of a pending_payment request should see it.
func NewReadingRequestResponse(r *ReadingRequest, includeSecret bool) *ReadingRequestResponse {
	resp := &ReadingRequestResponse{
		ID:            r.ID.String(),
		UserID:        r.UserID.String(),
		SpreadType:    r.SpreadType,
		Topic:         r.Topic,
		Price:         r.Price,
		PlatformFee:   r.PlatformFee,
		ReaderPayout:  r.ReaderPayout,
		RequestStatus: r.RequestStatus,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ExpiresAt:     r.ExpiresAt,
	}

	if r.ClaimedBy.Valid {
		resp.ClaimedBy = r.ClaimedBy.UUID.String()
	}
	if r.Context.Valid {
		resp.Context = r.Context.String
	}
	if r.OverallMessage.Valid {
		resp.OverallMessage = r.OverallMessage.String
	}
	if r.PhotoURL.Valid {
		resp.PhotoURL = r.PhotoURL.String
	}
	if r.ClaimedAt.Valid {
		resp.ClaimedAt = &r.ClaimedAt.Time
	}
	if r.ClaimDeadline.Valid {
		resp.ClaimDeadline = &r.ClaimDeadline.Time
	}
	if r.PaidAt.Valid {
		resp.PaidAt = &r.PaidAt.Time
	}
	if r.FulfilledAt.Valid {
		resp.FulfilledAt = &r.FulfilledAt.Time
	}

	if len(r.Cards) > 0 {
		var cards []Card
		if err := json.Unmarshal(r.Cards, &cards); err == nil {
			resp.Cards = cards
		}
	}
	if len(r.Review) > 0 {
		var review Review
		if err := json.Unmarshal(r.Review, &review); err == nil {
			resp.Review = &review
		}
	}

	if includeSecret && r.RequestStatus == StatusPendingPayment {
		if details, err := r.StripeDetails(); err == nil {
			resp.SetupIntentClientSecret = details.SetupIntentClientSecret
		}
	}

	return resp
}
