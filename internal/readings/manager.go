// Package readings implements the reading request lifecycle: creation,
// payment setup, claim, fulfillment with synchronous capture, cancel,
// release and review. All state lives in the store; every transition is a
// status-guarded write, so the manager itself holds no mutable state.
package readings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/fees"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/payments"
	"tarot-readings-backend/internal/spreads"
	"tarot-readings-backend/internal/store"
	"tarot-readings-backend/internal/supabase"
)

const (
	// Lifetime of an unclaimed request from creation.
	unclaimedLifetime = 30 * 24 * time.Hour
	// Shortened lifetime once payment setup completes.
	paidLifetime = 7 * 24 * time.Hour
	// Shotclock: how long a reader has to fulfill a claim.
	claimWindow = 24 * time.Hour

	chargeCurrency = "usd"
)

type Manager struct {
	store   RequestStore
	gateway PaymentGateway
	events  EventPublisher

	feePercentBps int64
	feeFixed      int64

	now func() time.Time
}

func NewManager(requestStore RequestStore, gateway PaymentGateway, events EventPublisher, feePercentBps, feeFixed int64) *Manager {
	return &Manager{
		store:         requestStore,
		gateway:       gateway,
		events:        events,
		feePercentBps: feePercentBps,
		feeFixed:      feeFixed,
		now:           time.Now,
	}
}

// Create validates the spread, resolves the Stripe customer and creates
// the request on one of two payment paths: a saved payment method puts it
// straight into awaiting_claim, otherwise a setup intent is opened and the
// request waits in pending_payment for the webhook.
func (m *Manager) Create(userID uuid.UUID, email string, in *models.CreateReadingRequestRequest) (*models.ReadingRequest, error) {
	spread, ok := spreads.GetSpreadConfig(in.SpreadType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpread, in.SpreadType)
	}

	platformFee, readerPayout := fees.ComputeFees(spread.Price, m.feePercentBps, m.feeFixed)

	profile, err := m.store.EnsureProfile(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}

	customerID := profile.StripeCustomerID.String
	if customerID == "" {
		customerID, err = m.gateway.EnsureCustomer(email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
		}
		if err := m.store.SetStripeCustomerID(userID, customerID); err != nil {
			log.Printf("Warning: failed to save customer id for user %s: %v", userID, err)
		}
	}

	requestID := uuid.New()
	nowTime := m.now()

	var details models.StripeDetails
	status := models.StatusPendingPayment

	if in.SavedPaymentMethodID != "" {
		owner, err := m.gateway.GetPaymentMethodCustomer(in.SavedPaymentMethodID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
		}
		if owner != customerID {
			return nil, ErrPaymentMethodMismatch
		}
		details.PaymentMethodID = in.SavedPaymentMethodID
		status = models.StatusAwaitingClaim
	} else {
		intent, err := m.gateway.CreateSetupIntent(customerID, requestID.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
		}
		details.SetupIntentID = intent.ID
		details.SetupIntentClientSecret = intent.ClientSecret
	}

	stripeJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment details: %w", err)
	}

	request := &models.ReadingRequest{
		ID:            requestID,
		UserID:        userID,
		SpreadType:    spread.Type,
		Topic:         in.Topic,
		Price:         spread.Price,
		PlatformFee:   platformFee,
		ReaderPayout:  readerPayout,
		RequestStatus: status,
		Stripe:        stripeJSON,
		ExpiresAt:     nowTime.Add(unclaimedLifetime),
	}
	if in.Context != "" {
		request.Context = sql.NullString{String: in.Context, Valid: true}
	}

	created, err := m.store.CreateReadingRequest(request)
	if err != nil {
		// Known inconsistency window: the gateway objects exist but the
		// document insert failed. Nothing was charged, so no compensation
		// is needed; the orphaned setup intent just goes unused.
		return nil, fmt.Errorf("failed to persist request: %w", err)
	}

	return created, nil
}

// MarkPaid transitions pending_payment to awaiting_claim once the setup
// intent has succeeded. A repeat call finds zero matching rows and fails
// cleanly instead of double-applying.
func (m *Manager) MarkPaid(requestID uuid.UUID) (*models.ReadingRequest, error) {
	request, err := m.store.MarkRequestPaid(requestID, m.now().Add(paidLifetime))
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrInvalidStateTransition
	}
	if err != nil {
		return nil, err
	}

	m.publish(request.ID, "request_paid", supabase.RequestPaidPayload(request.ID))
	return request, nil
}

// MarkPaidByOwner is the user-driven variant of MarkPaid for deployments
// without webhook delivery. The webhook path trusts the signed event; a
// user call instead has to prove ownership and that the setup intent
// really succeeded before the request becomes claimable.
func (m *Manager) MarkPaidByOwner(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	current, err := m.store.GetReadingRequestByID(requestID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrInvalidStateTransition
	}
	if err != nil {
		return nil, err
	}
	if current.UserID != userID || current.RequestStatus != models.StatusPendingPayment {
		return nil, ErrInvalidStateTransition
	}

	details, err := current.StripeDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment details: %w", err)
	}
	if details.SetupIntentID == "" {
		return nil, ErrPaymentNotConfirmed
	}
	intent, err := m.gateway.GetSetupIntent(details.SetupIntentID)
	if err != nil || !intent.Succeeded {
		return nil, ErrPaymentNotConfirmed
	}

	return m.MarkPaid(requestID)
}

// Claim gives the reader an exclusive, time-boxed lock on an
// awaiting_claim request. No money moves here; capture is deferred to
// fulfillment so a release needs no refund bookkeeping.
func (m *Manager) Claim(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	profile, err := m.store.GetProfile(readerID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrReaderNotPayable
	}
	if err != nil {
		return nil, err
	}
	if !profile.StripeAccountID.Valid || profile.StripeAccountID.String == "" {
		return nil, ErrReaderNotPayable
	}
	chargeable, err := m.gateway.AccountChargeable(profile.StripeAccountID.String)
	if err != nil || !chargeable {
		return nil, ErrReaderNotPayable
	}

	current, err := m.store.GetReadingRequestByID(requestID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrNotClaimable
	}
	if err != nil {
		return nil, err
	}
	// Anything outside the bank, unpaid requests included, is simply not
	// claimable. The payment-method check below only ever sees requests
	// that already passed the status gate.
	if current.RequestStatus != models.StatusAwaitingClaim {
		return nil, ErrNotClaimable
	}
	details, err := current.StripeDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment details: %w", err)
	}
	// A saved card or a completed setup intent (stamped by markPaid) must
	// back the request before anyone commits time to it.
	if details.PaymentMethodID == "" && !current.PaidAt.Valid {
		return nil, ErrNoPaymentMethod
	}

	claimed, err := m.store.ClaimRequest(requestID, readerID, m.now().Add(claimWindow))
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrNotClaimable
	}
	if err != nil {
		return nil, err
	}

	m.publish(claimed.ID, "request_claimed", supabase.RequestClaimedPayload(claimed.ID, readerID))
	return claimed, nil
}

// Fulfill delivers the reading and captures payment synchronously. The
// claimed-by-this-reader guard on both the read and the final write means
// a request is charged at most once: after the first success the status
// has flipped, so a retry matches nothing before reaching the gateway.
func (m *Manager) Fulfill(requestID, readerID uuid.UUID, in *models.FulfillReadingRequestRequest) (*models.ReadingRequest, error) {
	request, err := m.store.GetClaimedRequest(requestID, readerID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrNotFulfillable
	}
	if err != nil {
		return nil, err
	}

	// Re-validated independently of claim time; onboarding can be revoked.
	readerProfile, err := m.store.GetProfile(readerID)
	if err != nil || !readerProfile.StripeAccountID.Valid {
		return nil, ErrReaderNotPayable
	}
	connectedAccount := readerProfile.StripeAccountID.String
	chargeable, err := m.gateway.AccountChargeable(connectedAccount)
	if err != nil || !chargeable {
		return nil, ErrReaderNotPayable
	}

	details, err := request.StripeDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment details: %w", err)
	}

	paymentMethodID := details.PaymentMethodID
	if paymentMethodID == "" {
		if details.SetupIntentID == "" {
			return nil, ErrPaymentMethodUnavailable
		}
		intent, err := m.gateway.GetSetupIntent(details.SetupIntentID)
		if err != nil || intent.PaymentMethodID == "" {
			return nil, ErrPaymentMethodUnavailable
		}
		paymentMethodID = intent.PaymentMethodID
	}

	requesterProfile, err := m.store.GetProfile(request.UserID)
	if err != nil || !requesterProfile.StripeCustomerID.Valid {
		return nil, ErrPaymentMethodUnavailable
	}

	clonedPM, err := m.gateway.ClonePaymentMethod(paymentMethodID, requesterProfile.StripeCustomerID.String, connectedAccount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentCloneFailed, err)
	}

	result, err := m.gateway.ConfirmDestinationCharge(payments.ChargeParams{
		Amount:             request.Price,
		ApplicationFee:     request.PlatformFee,
		Currency:           chargeCurrency,
		PaymentMethodID:    clonedPM,
		ConnectedAccountID: connectedAccount,
		RequestID:          request.ID.String(),
		IdempotencyKey:     "fulfill-" + request.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if !result.Succeeded {
		return nil, ErrPaymentFailed
	}

	cards := make([]models.Card, len(in.Cards))
	var allSymbols []string
	for i, c := range in.Cards {
		symbols := spreads.SymbolsForCard(c.Name)
		cards[i] = models.Card{
			Name:           c.Name,
			Reversed:       c.Reversed,
			Position:       c.Position,
			Interpretation: c.Interpretation,
			Symbols:        symbols,
		}
		allSymbols = append(allSymbols, symbols...)
	}
	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cards: %w", err)
	}

	details.PaymentMethodID = clonedPM
	details.PaymentIntentID = result.PaymentIntentID
	details.ChargeID = result.ChargeID
	details.ConnectedAccountID = connectedAccount
	stripeJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment details: %w", err)
	}

	fulfilled, err := m.store.FulfillRequest(requestID, readerID, cardsJSON, in.OverallMessage, in.PhotoURL, stripeJSON)
	if err != nil {
		// Payment captured but the status flip failed: the request stays
		// claimed while Stripe holds the charge. The idempotency key on the
		// intent lets a retried fulfill repair forward without charging
		// again. Reconciliation owns anything beyond that.
		log.Printf("ERROR: payment %s captured for request %s but fulfillment write failed: %v",
			result.PaymentIntentID, requestID, err)
		if errors.Is(err, store.ErrNoMatch) {
			return nil, ErrNotFulfillable
		}
		return nil, err
	}

	if len(allSymbols) > 0 {
		if err := m.store.IncrementSymbolOccurrences(request.UserID, allSymbols); err != nil {
			log.Printf("Warning: failed to propagate symbols for request %s: %v", requestID, err)
		}
	}

	m.publish(fulfilled.ID, "request_fulfilled", supabase.RequestFulfilledPayload(fulfilled.ID, in.PhotoURL))
	return fulfilled, nil
}

// Cancel is owner-only and valid before any reader has committed. Nothing
// has been captured on either payment path at this point, so there is
// nothing to refund.
func (m *Manager) Cancel(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	cancelled, err := m.store.CancelRequest(requestID, userID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, err
	}

	m.publish(cancelled.ID, "request_cancelled", supabase.RequestCancelledPayload(cancelled.ID))
	return cancelled, nil
}

// Release returns a claimed request to the bank with its claim fields
// cleared. No payment side effect, consistent with capture-at-fulfillment.
func (m *Manager) Release(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	released, err := m.store.ReleaseRequest(requestID, readerID)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, ErrNotReleasable
	}
	if err != nil {
		return nil, err
	}

	m.publish(released.ID, "request_released", supabase.RequestReleasedPayload(released.ID))
	return released, nil
}

// Review attaches the requester's one-time review to a fulfilled request
// and folds the rating into the reader's aggregate. The fold is
// best-effort: its failure never fails the review itself.
func (m *Manager) Review(requestID, userID uuid.UUID, in *models.ReviewReadingRequestRequest) (*models.ReadingRequest, *models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, nil, ErrInvalidRating
	}

	review := models.Review{
		Rating:     in.Rating,
		Headline:   in.Headline,
		Text:       in.Text,
		ReviewerID: userID.String(),
		CreatedAt:  m.now(),
	}
	reviewJSON, err := json.Marshal(review)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode review: %w", err)
	}

	updated, err := m.store.AttachReview(requestID, userID, reviewJSON)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, nil, ErrNotReviewable
	}
	if err != nil {
		return nil, nil, err
	}

	if updated.ClaimedBy.Valid {
		if err := m.store.FoldReaderRating(updated.ClaimedBy.UUID, in.Rating); err != nil {
			log.Printf("Warning: failed to fold rating for reader %s: %v", updated.ClaimedBy.UUID, err)
		}
	}

	return updated, &review, nil
}

func (m *Manager) publish(requestID uuid.UUID, event string, payload map[string]interface{}) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishRequestEvent(requestID, event, payload); err != nil {
		log.Printf("Warning: failed to publish %s for request %s: %v", event, requestID, err)
	}
}
