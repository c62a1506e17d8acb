package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request lifecycle statuses. Stored as text in the request_status column.
const (
	StatusPendingPayment = "pending_payment"
	StatusAwaitingClaim  = "awaiting_claim"
	StatusClaimed        = "claimed"
	StatusFulfilled      = "fulfilled"
	StatusCancelled      = "cancelled"
	StatusExpired        = "expired"
)

type ReadingRequest struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ClaimedBy     uuid.NullUUID
	SpreadType    string
	Topic         string
	Context       sql.NullString
	Price         int64
	PlatformFee   int64
	ReaderPayout  int64
	RequestStatus string

	// Embedded jsonb sub-objects
	Stripe json.RawMessage
	Cards  json.RawMessage
	Review json.RawMessage

	OverallMessage sql.NullString
	PhotoURL       sql.NullString

	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
	ClaimedAt     sql.NullTime
	ClaimDeadline sql.NullTime
	PaidAt        sql.NullTime
	FulfilledAt   sql.NullTime
}

// StripeDetails is the embedded stripe sub-object. Exactly one of the
// setup-intent pair or the saved payment method is set at creation; the
// intent/charge/account ids are filled in at capture time.
type StripeDetails struct {
	SetupIntentID           string `json:"setup_intent_id,omitempty"`
	SetupIntentClientSecret string `json:"setup_intent_client_secret,omitempty"`
	PaymentMethodID         string `json:"payment_method_id,omitempty"`
	PaymentIntentID         string `json:"payment_intent_id,omitempty"`
	ChargeID                string `json:"charge_id,omitempty"`
	ConnectedAccountID      string `json:"connected_account_id,omitempty"`
}

func (r *ReadingRequest) StripeDetails() (*StripeDetails, error) {
	var details StripeDetails
	if len(r.Stripe) > 0 {
		if err := json.Unmarshal(r.Stripe, &details); err != nil {
			return nil, err
		}
	}
	return &details, nil
}

type Card struct {
	Name           string   `json:"name"`
	Reversed       bool     `json:"reversed"`
	Position       int      `json:"position"`
	Interpretation string   `json:"interpretation"`
	Symbols        []string `json:"symbols,omitempty"`
}

type Review struct {
	Rating     int       `json:"rating"`
	Headline   string    `json:"headline,omitempty"`
	Text       string    `json:"text,omitempty"`
	ReviewerID string    `json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile links a user to their Stripe identities. Readers additionally
// carry a connected account id once onboarded.
type Profile struct {
	UserID           uuid.UUID
	Email            string
	StripeCustomerID sql.NullString
	StripeAccountID  sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReaderRating is the running review aggregate per reader.
type ReaderRating struct {
	ReaderID   uuid.UUID
	TotalCount int64
	RatingSum  int64
	Rating1    int64
	Rating2    int64
	Rating3    int64
	Rating4    int64
	Rating5    int64
}

func (r *ReaderRating) Average() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.RatingSum) / float64(r.TotalCount)
}

type SymbolOccurrence struct {
	UserID          uuid.UUID
	Symbol          string
	OccurrenceCount int64
	LastSeenAt      time.Time
}
