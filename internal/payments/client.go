// Package payments wraps the Stripe API surface the lifecycle manager
// needs: customer resolution, setup intents, payment-method cloning onto
// connected accounts, and destination charges with an application fee.
package payments

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

// SetupIntent is the slice of a Stripe setup intent the manager cares
// about. PaymentMethodID is only set once the intent has succeeded.
type SetupIntent struct {
	ID              string
	ClientSecret    string
	PaymentMethodID string
	Succeeded       bool
}

// ChargeParams describes a destination charge: a payment intent created
// and confirmed on the reader's connected account, with the platform fee
// deducted at capture.
type ChargeParams struct {
	Amount             int64
	ApplicationFee     int64
	Currency           string
	PaymentMethodID    string
	ConnectedAccountID string
	RequestID          string
	IdempotencyKey     string
}

type ChargeResult struct {
	PaymentIntentID string
	ChargeID        string
	Succeeded       bool
}

// EnsureCustomer resolves the Stripe customer for an email, creating one
// if none exists yet.
func (c *Client) EnsureCustomer(email string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Limit = stripe.Int64(1)
	iter := c.api.Customers.List(listParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	customer, err := c.api.Customers.New(&stripe.CustomerParams{Email: stripe.String(email)})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return customer.ID, nil
}

// CreateSetupIntent starts the save-a-card flow for off-session charging
// later. The request id travels in metadata so the webhook can route the
// succeeded event back to the request.
func (c *Client) CreateSetupIntent(customerID, requestID string) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		Usage:              stripe.String("off_session"),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("reading_request_id", requestID)

	intent, err := c.api.SetupIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create setup intent: %w", err)
	}
	return newSetupIntent(intent), nil
}

func (c *Client) GetSetupIntent(setupIntentID string) (*SetupIntent, error) {
	var intent *stripe.SetupIntent
	err := c.RetryWithBackoff(func() error {
		var err error
		intent, err = c.api.SetupIntents.Get(setupIntentID, nil)
		return err
	}, lookupRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve setup intent: %w", err)
	}
	return newSetupIntent(intent), nil
}

func newSetupIntent(intent *stripe.SetupIntent) *SetupIntent {
	si := &SetupIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Succeeded:    intent.Status == stripe.SetupIntentStatusSucceeded,
	}
	if intent.PaymentMethod != nil {
		si.PaymentMethodID = intent.PaymentMethod.ID
	}
	return si
}

// GetPaymentMethodCustomer returns the customer a payment method belongs
// to, for the ownership check on the saved-card path.
func (c *Client) GetPaymentMethodCustomer(paymentMethodID string) (string, error) {
	pm, err := c.api.PaymentMethods.Get(paymentMethodID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve payment method: %w", err)
	}
	if pm.Customer == nil {
		return "", nil
	}
	return pm.Customer.ID, nil
}

// ClonePaymentMethod copies a platform payment method onto a connected
// account. Stripe requires the clone for marketplace-style charges made
// directly on the connected account.
func (c *Client) ClonePaymentMethod(paymentMethodID, customerID, connectedAccountID string) (string, error) {
	params := &stripe.PaymentMethodParams{
		PaymentMethod: stripe.String(paymentMethodID),
		Customer:      stripe.String(customerID),
	}
	params.SetStripeAccount(connectedAccountID)

	cloned, err := c.api.PaymentMethods.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to clone payment method: %w", err)
	}
	return cloned.ID, nil
}

// ConfirmDestinationCharge creates and immediately confirms a payment
// intent on the connected account. This is a synchronous capture: the
// caller only proceeds once Stripe reports succeeded.
func (c *Client) ConfirmDestinationCharge(p ChargeParams) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(p.Amount),
		Currency:             stripe.String(p.Currency),
		PaymentMethod:        stripe.String(p.PaymentMethodID),
		ApplicationFeeAmount: stripe.Int64(p.ApplicationFee),
		Confirm:              stripe.Bool(true),
		OffSession:           stripe.Bool(true),
	}
	params.SetStripeAccount(p.ConnectedAccountID)
	params.AddMetadata("reading_request_id", p.RequestID)
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment intent: %w", err)
	}

	result := &ChargeResult{
		PaymentIntentID: intent.ID,
		Succeeded:       intent.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if intent.LatestCharge != nil {
		result.ChargeID = intent.LatestCharge.ID
	}
	return result, nil
}

// AccountChargeable reports whether a connected account is fully onboarded
// and able to take charges.
func (c *Client) AccountChargeable(accountID string) (bool, error) {
	var account *stripe.Account
	err := c.RetryWithBackoff(func() error {
		var err error
		account, err = c.api.Accounts.GetByID(accountID, nil)
		return err
	}, lookupRetries)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return account.ChargesEnabled && account.DetailsSubmitted, nil
}
