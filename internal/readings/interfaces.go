package readings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/payments"
)

// RequestStore is the narrow document-store contract the manager needs.
// Every transition method carries its status precondition inside the
// query; implementations must make the precondition-and-write atomic per
// row so that racing writers get at-most-one winner.
type RequestStore interface {
	CreateReadingRequest(r *models.ReadingRequest) (*models.ReadingRequest, error)
	GetReadingRequestByID(requestID uuid.UUID) (*models.ReadingRequest, error)
	GetClaimedRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error)

	MarkRequestPaid(requestID uuid.UUID, expiresAt time.Time) (*models.ReadingRequest, error)
	ClaimRequest(requestID, readerID uuid.UUID, claimDeadline time.Time) (*models.ReadingRequest, error)
	ReleaseRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error)
	FulfillRequest(requestID, readerID uuid.UUID, cards json.RawMessage, overallMessage, photoURL string, stripe json.RawMessage) (*models.ReadingRequest, error)
	CancelRequest(requestID, userID uuid.UUID) (*models.ReadingRequest, error)
	AttachReview(requestID, userID uuid.UUID, review json.RawMessage) (*models.ReadingRequest, error)

	EnsureProfile(userID uuid.UUID, email string) (*models.Profile, error)
	GetProfile(userID uuid.UUID) (*models.Profile, error)
	SetStripeCustomerID(userID uuid.UUID, customerID string) error
	FoldReaderRating(readerID uuid.UUID, rating int) error
	IncrementSymbolOccurrences(userID uuid.UUID, symbols []string) error
}

// PaymentGateway is the Stripe surface the manager consumes.
type PaymentGateway interface {
	EnsureCustomer(email string) (string, error)
	CreateSetupIntent(customerID, requestID string) (*payments.SetupIntent, error)
	GetSetupIntent(setupIntentID string) (*payments.SetupIntent, error)
	GetPaymentMethodCustomer(paymentMethodID string) (string, error)
	ClonePaymentMethod(paymentMethodID, customerID, connectedAccountID string) (string, error)
	ConfirmDestinationCharge(p payments.ChargeParams) (*payments.ChargeResult, error)
	AccountChargeable(accountID string) (bool, error)
}

// EventPublisher pushes status-change notifications; failures are always
// best-effort.
type EventPublisher interface {
	PublishRequestEvent(requestID uuid.UUID, event string, payload map[string]interface{}) error
	PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error
}
