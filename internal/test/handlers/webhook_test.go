package handlers_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"tarot-readings-backend/internal/config"
	"tarot-readings-backend/internal/handlers"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/readings"
	"tarot-readings-backend/internal/store"
)

const webhookSecret = "whsec_test_secret"

func webhookRouter(manager *readings.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{StripeWebhookSecret: webhookSecret}
	handler := handlers.NewWebhookHandler(cfg, manager)

	router := gin.New()
	router.POST("/api/v1/webhooks/stripe", handler.HandleStripeWebhook)
	return router
}

func signedHeader(payload []byte, secret string) string {
	now := time.Now()
	signature := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))
}

func setupIntentEvent(requestID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"api_version": %q,
		"type": "setup_intent.succeeded",
		"data": {
			"object": {
				"id": "seti_test_1",
				"object": "setup_intent",
				"metadata": {"reading_request_id": %q}
			}
		}
	}`, stripe.APIVersion, requestID))
}

func TestHandleStripeWebhook_MissingSignature(t *testing.T) {
	router := webhookRouter(nil)
	payload := setupIntentEvent("not-our-event")

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStripeWebhook_BadSignature(t *testing.T) {
	router := webhookRouter(nil)
	payload := setupIntentEvent("not-our-event")

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, "whsec_wrong_secret"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStripeWebhook_TamperedPayload(t *testing.T) {
	router := webhookRouter(nil)
	payload := setupIntentEvent("not-our-event")
	header := signedHeader(payload, webhookSecret)
	tampered := bytes.Replace(payload, []byte("not-our-event"), []byte("someone-elses"), 1)

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(tampered))
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStripeWebhook_ForeignSetupIntentIgnored(t *testing.T) {
	router := webhookRouter(nil)
	// A setup intent without one of our request ids in metadata is
	// acknowledged so Stripe stops retrying.
	payload := setupIntentEvent("not-a-uuid")

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestHandleStripeWebhook_UnhandledEventType(t *testing.T) {
	router := webhookRouter(nil)
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_2",
		"api_version": %q,
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_test_1", "object": "payment_intent"}}
	}`, stripe.APIVersion))

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// markPaidStore is the minimal RequestStore for driving MarkPaid through
// the webhook: MarkRequestPaid is scripted, everything else is inert.
type markPaidStore struct {
	markPaidErr error
}

func (s *markPaidStore) MarkRequestPaid(requestID uuid.UUID, expiresAt time.Time) (*models.ReadingRequest, error) {
	if s.markPaidErr != nil {
		return nil, s.markPaidErr
	}
	return &models.ReadingRequest{
		ID:            requestID,
		RequestStatus: models.StatusAwaitingClaim,
		ExpiresAt:     expiresAt,
	}, nil
}

func (s *markPaidStore) CreateReadingRequest(r *models.ReadingRequest) (*models.ReadingRequest, error) {
	return r, nil
}

func (s *markPaidStore) GetReadingRequestByID(uuid.UUID) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) GetClaimedRequest(_, _ uuid.UUID) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) ClaimRequest(_, _ uuid.UUID, _ time.Time) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) ReleaseRequest(_, _ uuid.UUID) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) FulfillRequest(_, _ uuid.UUID, _ json.RawMessage, _, _ string, _ json.RawMessage) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) CancelRequest(_, _ uuid.UUID) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) AttachReview(_, _ uuid.UUID, _ json.RawMessage) (*models.ReadingRequest, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) EnsureProfile(userID uuid.UUID, email string) (*models.Profile, error) {
	return &models.Profile{UserID: userID, Email: email}, nil
}

func (s *markPaidStore) GetProfile(uuid.UUID) (*models.Profile, error) {
	return nil, store.ErrNoMatch
}

func (s *markPaidStore) SetStripeCustomerID(uuid.UUID, string) error { return nil }

func (s *markPaidStore) FoldReaderRating(uuid.UUID, int) error { return nil }

func (s *markPaidStore) IncrementSymbolOccurrences(uuid.UUID, []string) error { return nil }

func TestHandleStripeWebhook_MarksRequestPaid(t *testing.T) {
	manager := readings.NewManager(&markPaidStore{}, nil, nil, 1000, 0)
	router := webhookRouter(manager)
	payload := setupIntentEvent(uuid.New().String())

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestHandleStripeWebhook_RepeatDeliveryAcked(t *testing.T) {
	// The guarded write matches nothing on a second delivery; that is a
	// clean no-op and Stripe must not keep retrying.
	manager := readings.NewManager(&markPaidStore{markPaidErr: store.ErrNoMatch}, nil, nil, 1000, 0)
	router := webhookRouter(manager)
	payload := setupIntentEvent(uuid.New().String())

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleStripeWebhook_StoreFailureTriggersRedelivery(t *testing.T) {
	// A transient store failure must not be acknowledged, or the request
	// would be stranded in pending_payment with no retry coming.
	manager := readings.NewManager(&markPaidStore{markPaidErr: errors.New("connection reset")}, nil, nil, 1000, 0)
	router := webhookRouter(manager)
	payload := setupIntentEvent(uuid.New().String())

	req, _ := http.NewRequest("POST", "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, webhookSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
