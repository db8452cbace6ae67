package services

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const subscriptionProductName = "Assinatura Sistema Comanda"

// CheckoutSession is the hosted checkout handle returned to the frontend.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// StripeService wraps every Stripe API interaction the system performs.
type StripeService interface {
	CreateCustomer(tenantID, tenantName, ownerEmail string) (string, error)
	CreateCheckoutSession(customerID string, priceInCents int64, tenantID, successURL, cancelURL string, trialDays int64) (*CheckoutSession, error)
	UpdateSubscriptionPrice(subscriptionID string, newPriceInCents int64) (string, error)
	ConstructEvent(payload []byte, sigHeader string) (*stripe.Event, error)
}

type stripeService struct {
	webhookSecret string
	logger        *zap.Logger

	// SDK entry points, swappable in tests.
	createCustomer     func(params *stripe.CustomerParams) (*stripe.Customer, error)
	createPrice        func(params *stripe.PriceParams) (*stripe.Price, error)
	createSession      func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSubscription    func(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	updateSubscription func(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

// NewStripeService configures the global Stripe client key and returns the
// service. An empty webhookSecret disables signature verification, which is
// only acceptable outside production.
func NewStripeService(apiKey, webhookSecret string, logger *zap.Logger) StripeService {
	stripe.Key = apiKey
	return &stripeService{
		webhookSecret:      webhookSecret,
		logger:             logger,
		createCustomer:     customer.New,
		createPrice:        price.New,
		createSession:      stripesession.New,
		getSubscription:    subscription.Get,
		updateSubscription: subscription.Update,
	}
}

func (s *stripeService) CreateCustomer(tenantID, tenantName, ownerEmail string) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(tenantName),
		Email: stripe.String(ownerEmail),
	}
	params.AddMetadata("tenant_id", tenantID)

	cus, err := s.createCustomer(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return cus.ID, nil
}

// newMonthlyPrice creates a throwaway monthly recurring price for the given
// amount. Prices are immutable in Stripe, so each checkout or price change
// mints a new one.
func (s *stripeService) newMonthlyPrice(amountInCents int64) (*stripe.Price, error) {
	params := &stripe.PriceParams{
		UnitAmount: stripe.Int64(amountInCents),
		Currency:   stripe.String(string(stripe.CurrencyBRL)),
		Recurring: &stripe.PriceRecurringParams{
			Interval:      stripe.String(string(stripe.PriceRecurringIntervalMonth)),
			IntervalCount: stripe.Int64(1),
		},
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(subscriptionProductName),
		},
	}
	return s.createPrice(params)
}

func (s *stripeService) CreateCheckoutSession(customerID string, priceInCents int64, tenantID, successURL, cancelURL string, trialDays int64) (*CheckoutSession, error) {
	p, err := s.newMonthlyPrice(priceInCents)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe price: %w", err)
	}

	subscriptionData := &stripe.CheckoutSessionSubscriptionDataParams{
		Metadata: map[string]string{"tenant_id": tenantID},
	}
	if trialDays > 0 {
		subscriptionData.TrialPeriodDays = stripe.Int64(trialDays)
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.ID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: subscriptionData,
		SuccessURL:       stripe.String(successURL),
		CancelURL:        stripe.String(cancelURL),
		Metadata:         map[string]string{"tenant_id": tenantID},
	}

	session, err := s.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

// UpdateSubscriptionPrice swaps the live subscription onto a freshly minted
// price and invoices the proration immediately. Returns the subscription
// status reported by Stripe.
func (s *stripeService) UpdateSubscriptionPrice(subscriptionID string, newPriceInCents int64) (string, error) {
	sub, err := s.getSubscription(subscriptionID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve subscription: %w", err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return "", fmt.Errorf("subscription %s has no items", subscriptionID)
	}

	p, err := s.newMonthlyPrice(newPriceInCents)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe price: %w", err)
	}

	updated, err := s.updateSubscription(subscriptionID, &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(p.ID),
			},
		},
		ProrationBehavior: stripe.String("always_invoice"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update subscription: %w", err)
	}
	return string(updated.Status), nil
}

// ConstructEvent verifies and parses a webhook payload. Without a configured
// secret the payload is parsed unverified.
func (s *stripeService) ConstructEvent(payload []byte, sigHeader string) (*stripe.Event, error) {
	if s.webhookSecret == "" {
		s.logger.Warn("stripe webhook secret not configured, skipping signature verification")
		event := &stripe.Event{}
		if err := json.Unmarshal(payload, event); err != nil {
			return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
		}
		return event, nil
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}
