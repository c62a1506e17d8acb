package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"tarot-readings-backend/internal/config"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
)

type WebhookHandler struct {
	config  *config.Config
	manager *readings.Manager
}

func NewWebhookHandler(cfg *config.Config, manager *readings.Manager) *WebhookHandler {
	return &WebhookHandler{
		config:  cfg,
		manager: manager,
	}
}

// HandleStripeWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Receives Stripe events. setup_intent.succeeded transitions the linked request from pending_payment to awaiting_claim. Signature-verified, no user auth.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe signature header"
// @Success     200 {object} map[string]string
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.config.StripeWebhookSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid signature",
			Message: err.Error(),
		})
		return
	}

	if event.Type == "setup_intent.succeeded" {
		var intent stripe.SetupIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to parse event",
				Message: err.Error(),
			})
			return
		}

		requestIDStr := intent.Metadata["reading_request_id"]
		requestID, err := uuid.Parse(requestIDStr)
		if err != nil {
			// Not one of ours; acknowledge so Stripe stops retrying.
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		if _, err := h.manager.MarkPaid(requestID); err != nil {
			// A repeat delivery finds the request already awaiting_claim;
			// that is a clean no-op, not a delivery failure. Anything else
			// (a store outage, say) must surface as an error so Stripe
			// redelivers instead of stranding the request unpaid.
			if !errors.Is(err, readings.ErrInvalidStateTransition) {
				log.Printf("webhook: mark paid for request %s failed: %v", requestID, err)
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error: "failed to process event",
				})
				return
			}
			log.Printf("webhook: mark paid for request %s: %v", requestID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
