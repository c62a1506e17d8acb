package readings_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"tarot-readings-backend/internal/models"
	"tarot-readings-backend/internal/payments"
	"tarot-readings-backend/internal/store"
)

// fakeStore is an in-memory stand-in for the Postgres store. Each
// transition checks its status precondition and writes under one lock,
// matching the atomicity of the conditional UPDATE ... RETURNING queries.
type fakeStore struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.ReadingRequest
	profiles map[uuid.UUID]*models.Profile
	ratings  map[uuid.UUID]*models.ReaderRating
	symbols  map[uuid.UUID]map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[uuid.UUID]*models.ReadingRequest),
		profiles: make(map[uuid.UUID]*models.Profile),
		ratings:  make(map[uuid.UUID]*models.ReaderRating),
		symbols:  make(map[uuid.UUID]map[string]int64),
	}
}

func copyRequest(r *models.ReadingRequest) *models.ReadingRequest {
	cp := *r
	return &cp
}

func (s *fakeStore) CreateReadingRequest(r *models.ReadingRequest) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyRequest(r)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.requests[cp.ID] = cp
	return copyRequest(cp), nil
}

func (s *fakeStore) GetReadingRequestByID(requestID uuid.UUID) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, store.ErrNoMatch
	}
	return copyRequest(r), nil
}

func (s *fakeStore) GetClaimedRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusClaimed || !r.ClaimedBy.Valid || r.ClaimedBy.UUID != readerID {
		return nil, store.ErrNoMatch
	}
	return copyRequest(r), nil
}

func (s *fakeStore) MarkRequestPaid(requestID uuid.UUID, expiresAt time.Time) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusPendingPayment {
		return nil, store.ErrNoMatch
	}
	r.RequestStatus = models.StatusAwaitingClaim
	r.PaidAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.ExpiresAt = expiresAt
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) ClaimRequest(requestID, readerID uuid.UUID, claimDeadline time.Time) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusAwaitingClaim {
		return nil, store.ErrNoMatch
	}
	r.RequestStatus = models.StatusClaimed
	r.ClaimedBy = uuid.NullUUID{UUID: readerID, Valid: true}
	r.ClaimedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.ClaimDeadline = sql.NullTime{Time: claimDeadline, Valid: true}
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) ReleaseRequest(requestID, readerID uuid.UUID) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusClaimed || !r.ClaimedBy.Valid || r.ClaimedBy.UUID != readerID {
		return nil, store.ErrNoMatch
	}
	r.RequestStatus = models.StatusAwaitingClaim
	r.ClaimedBy = uuid.NullUUID{}
	r.ClaimedAt = sql.NullTime{}
	r.ClaimDeadline = sql.NullTime{}
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) FulfillRequest(requestID, readerID uuid.UUID, cards json.RawMessage, overallMessage, photoURL string, stripe json.RawMessage) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusClaimed || !r.ClaimedBy.Valid || r.ClaimedBy.UUID != readerID {
		return nil, store.ErrNoMatch
	}
	r.RequestStatus = models.StatusFulfilled
	r.Cards = cards
	r.Stripe = stripe
	r.OverallMessage = sql.NullString{String: overallMessage, Valid: overallMessage != ""}
	r.PhotoURL = sql.NullString{String: photoURL, Valid: photoURL != ""}
	r.FulfilledAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) CancelRequest(requestID, userID uuid.UUID) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.UserID != userID {
		return nil, store.ErrNoMatch
	}
	if r.RequestStatus != models.StatusPendingPayment && r.RequestStatus != models.StatusAwaitingClaim {
		return nil, store.ErrNoMatch
	}
	r.RequestStatus = models.StatusCancelled
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) AttachReview(requestID, userID uuid.UUID, review json.RawMessage) (*models.ReadingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequestStatus != models.StatusFulfilled || r.UserID != userID || len(r.Review) > 0 {
		return nil, store.ErrNoMatch
	}
	r.Review = review
	r.UpdatedAt = time.Now()
	return copyRequest(r), nil
}

func (s *fakeStore) EnsureProfile(userID uuid.UUID, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	p := &models.Profile{UserID: userID, Email: email, CreatedAt: time.Now()}
	s.profiles[userID] = p
	cp := *p
	return &cp, nil
}

func (s *fakeStore) GetProfile(userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNoMatch
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) SetStripeCustomerID(userID uuid.UUID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return store.ErrNoMatch
	}
	p.StripeCustomerID = sql.NullString{String: customerID, Valid: true}
	return nil
}

func (s *fakeStore) FoldReaderRating(readerID uuid.UUID, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.ratings[readerID]
	if !ok {
		agg = &models.ReaderRating{ReaderID: readerID}
		s.ratings[readerID] = agg
	}
	agg.TotalCount++
	agg.RatingSum += int64(rating)
	switch rating {
	case 1:
		agg.Rating1++
	case 2:
		agg.Rating2++
	case 3:
		agg.Rating3++
	case 4:
		agg.Rating4++
	case 5:
		agg.Rating5++
	}
	return nil
}

func (s *fakeStore) IncrementSymbolOccurrences(userID uuid.UUID, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts, ok := s.symbols[userID]
	if !ok {
		counts = make(map[string]int64)
		s.symbols[userID] = counts
	}
	for _, sym := range symbols {
		counts[sym]++
	}
	return nil
}

// seedProfile installs a profile with Stripe identities already attached,
// the state a user is in after onboarding.
func (s *fakeStore) seedProfile(userID uuid.UUID, email, customerID, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = &models.Profile{
		UserID:           userID,
		Email:            email,
		StripeCustomerID: sql.NullString{String: customerID, Valid: customerID != ""},
		StripeAccountID:  sql.NullString{String: accountID, Valid: accountID != ""},
		CreatedAt:        time.Now(),
	}
}

func (s *fakeStore) status(requestID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return ""
	}
	return r.RequestStatus
}

func (s *fakeStore) symbolCount(userID uuid.UUID, symbol string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbols[userID][symbol]
}

func (s *fakeStore) readerRating(readerID uuid.UUID) models.ReaderRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.ratings[readerID]; ok {
		return *agg
	}
	return models.ReaderRating{ReaderID: readerID}
}

// fakeGateway records every Stripe call so tests can assert on charge
// parameters and call counts.
type fakeGateway struct {
	mu sync.Mutex

	customers   map[string]string // email -> customer id
	intents     map[string]*payments.SetupIntent
	pmOwners    map[string]string // payment method id -> customer id
	unchargeble map[string]bool   // connected accounts failing the payable check

	failCharge  bool
	charges     []payments.ChargeParams
	nextIntent  int
	nextCharge  int
	nextCloned  int
	clonedFrom  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customers:   make(map[string]string),
		intents:     make(map[string]*payments.SetupIntent),
		pmOwners:    make(map[string]string),
		unchargeble: make(map[string]bool),
	}
}

func (g *fakeGateway) EnsureCustomer(email string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.customers[email]; ok {
		return id, nil
	}
	id := fmt.Sprintf("cus_%d", len(g.customers)+1)
	g.customers[email] = id
	return id, nil
}

func (g *fakeGateway) CreateSetupIntent(customerID, requestID string) (*payments.SetupIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextIntent++
	intent := &payments.SetupIntent{
		ID:           fmt.Sprintf("seti_%d", g.nextIntent),
		ClientSecret: fmt.Sprintf("seti_%d_secret", g.nextIntent),
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) GetSetupIntent(setupIntentID string) (*payments.SetupIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[setupIntentID]
	if !ok {
		return nil, fmt.Errorf("no such setup intent: %s", setupIntentID)
	}
	cp := *intent
	return &cp, nil
}

// completeSetupIntent simulates the cardholder finishing the card-entry
// flow: the intent succeeds and now carries a payment method.
func (g *fakeGateway) completeSetupIntent(setupIntentID, customerID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	pm := fmt.Sprintf("pm_from_%s", setupIntentID)
	g.intents[setupIntentID].PaymentMethodID = pm
	g.intents[setupIntentID].Succeeded = true
	g.pmOwners[pm] = customerID
	return pm
}

func (g *fakeGateway) registerPaymentMethod(pmID, customerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pmOwners[pmID] = customerID
}

func (g *fakeGateway) GetPaymentMethodCustomer(paymentMethodID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.pmOwners[paymentMethodID]
	if !ok {
		return "", fmt.Errorf("no such payment method: %s", paymentMethodID)
	}
	return owner, nil
}

func (g *fakeGateway) ClonePaymentMethod(paymentMethodID, customerID, connectedAccountID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pmOwners[paymentMethodID] != customerID {
		return "", fmt.Errorf("payment method %s does not belong to %s", paymentMethodID, customerID)
	}
	g.nextCloned++
	g.clonedFrom = append(g.clonedFrom, paymentMethodID)
	return fmt.Sprintf("pm_clone_%d", g.nextCloned), nil
}

func (g *fakeGateway) ConfirmDestinationCharge(p payments.ChargeParams) (*payments.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCharge {
		return nil, fmt.Errorf("card declined")
	}
	g.nextCharge++
	g.charges = append(g.charges, p)
	return &payments.ChargeResult{
		PaymentIntentID: fmt.Sprintf("pi_%d", g.nextCharge),
		ChargeID:        fmt.Sprintf("ch_%d", g.nextCharge),
		Succeeded:       true,
	}, nil
}

func (g *fakeGateway) AccountChargeable(accountID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.unchargeble[accountID], nil
}

func (g *fakeGateway) chargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.charges)
}

func (g *fakeGateway) lastCharge() payments.ChargeParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges[len(g.charges)-1]
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishRequestEvent(requestID uuid.UUID, event string, payload map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
