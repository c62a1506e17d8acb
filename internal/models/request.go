package models

type CreateReadingRequestRequest struct {
	// Spread type key: SINGLE, THREE_CARD or FIVE_CARD
	SpreadType string `json:"spread_type" binding:"required" example:"THREE_CARD"`
	Topic      string `json:"topic" binding:"required" example:"career"`
	Context    string `json:"context,omitempty"`
	// Optional saved Stripe payment method. When present the request is
	// created directly in awaiting_claim; otherwise a setup intent is
	// created and the request starts in pending_payment.
	SavedPaymentMethodID string `json:"saved_payment_method_id,omitempty"`
}

type CardInput struct {
	Name           string `json:"name" binding:"required"`
	Reversed       bool   `json:"reversed"`
	Position       int    `json:"position"`
	Interpretation string `json:"interpretation" binding:"required"`
}

type FulfillReadingRequestRequest struct {
	PhotoURL       string      `json:"photo_url,omitempty"`
	Cards          []CardInput `json:"cards" binding:"required,min=1"`
	OverallMessage string      `json:"overall_message" binding:"required"`
}

type ReviewReadingRequestRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Headline string `json:"headline,omitempty"`
	Text     string `json:"text,omitempty"`
}
