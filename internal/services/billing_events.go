package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/notify"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// subscriptionEvent is the slice of a Stripe subscription object this service
// actually reads. Everything else in event.Data.Raw is ignored.
type subscriptionEvent struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				UnitAmount int64 `json:"unit_amount"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

type invoiceEvent struct {
	ID            string `json:"id"`
	Subscription  string `json:"subscription"`
	PaymentIntent string `json:"payment_intent"`
	AmountPaid    int64  `json:"amount_paid"`
	AmountDue     int64  `json:"amount_due"`
}

type checkoutSessionEvent struct {
	ID           string            `json:"id"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// MapStripeStatus translates an external subscription status into the local
// status plus the access flag it implies. Statuses outside the known set
// return ErrUnmappedStatus so the caller can refuse the event.
func MapStripeStatus(status string) (models.SubscriptionStatus, bool, error) {
	switch status {
	case "trialing":
		return models.StatusTrial, true, nil
	case "active":
		return models.StatusActive, true, nil
	case "past_due":
		return models.StatusPastDue, false, nil
	case "canceled":
		return models.StatusCanceled, false, nil
	case "unpaid":
		return models.StatusUnpaid, false, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnmappedStatus, status)
	}
}

// BillingEventProcessor applies verified billing events to tenant state.
// Handlers are idempotent: re-delivery of an event converges on the same row
// values.
type BillingEventProcessor interface {
	ProcessEvent(ctx context.Context, event *stripe.Event) error
}

type billingEventProcessor struct {
	tenantRepo       repositories.TenantRepository
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.PaymentRepository
	broker           notify.Broker
	logger           *zap.Logger
}

func NewBillingEventProcessor(
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
	broker notify.Broker,
	logger *zap.Logger,
) BillingEventProcessor {
	return &billingEventProcessor{
		tenantRepo:       tenantRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		broker:           broker,
		logger:           logger,
	}
}

func (p *billingEventProcessor) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	var handle func(context.Context, *stripe.Event) error
	switch event.Type {
	case "customer.subscription.created":
		handle = p.handleSubscriptionCreated
	case "customer.subscription.updated":
		handle = p.handleSubscriptionUpdated
	case "customer.subscription.deleted":
		handle = p.handleSubscriptionDeleted
	case "invoice.payment_succeeded":
		handle = p.handleInvoicePaymentSucceeded
	case "invoice.payment_failed":
		handle = p.handleInvoicePaymentFailed
	case "checkout.session.completed":
		handle = p.handleCheckoutCompleted
	default:
		p.logger.Info("ignoring billing event", zap.String("type", string(event.Type)))
		return nil
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("billing event %q has no data object", event.Type)
	}
	return handle(ctx, event)
}

// safePeriodStart guards against missing or zero timestamps in the payload.
func safePeriodStart(unix int64) time.Time {
	if unix <= 0 {
		return time.Now()
	}
	return time.Unix(unix, 0)
}

// periodEndFromUnix returns nil for a missing timestamp so the stored period
// end is left untouched rather than guessed at.
func periodEndFromUnix(unix int64) *time.Time {
	if unix <= 0 {
		return nil
	}
	t := time.Unix(unix, 0)
	return &t
}

func (p *billingEventProcessor) handleSubscriptionCreated(ctx context.Context, event *stripe.Event) error {
	var sub subscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription event: %w", err)
	}

	tenant, ok, err := p.tenantFromMetadata(ctx, sub.Metadata, event)
	if err != nil || !ok {
		return err
	}

	status := models.StatusActive
	if sub.Status == "trialing" {
		status = models.StatusTrial
	}
	periodEnd := periodEndFromUnix(sub.CurrentPeriodEnd)
	if periodEnd == nil {
		p.logger.Warn("subscription event without current_period_end",
			zap.String("subscription_id", sub.ID))
	}

	if err := p.tenantRepo.AttachSubscription(ctx, tenant.ID, sub.ID, status, true, periodEnd); err != nil {
		return fmt.Errorf("failed to attach subscription: %w", err)
	}

	priceInCents := int64(0)
	if len(sub.Items.Data) > 0 {
		priceInCents = sub.Items.Data[0].Price.UnitAmount
	}
	userCount, err := p.userRepo.CountByTenant(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to count tenant users: %w", err)
	}

	record := &models.Subscription{
		ID:                   uuid.New(),
		TenantID:             tenant.ID,
		StripeSubscriptionID: sub.ID,
		Status:               status,
		CurrentPeriodStart:   safePeriodStart(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     periodEnd,
		PriceInCents:         priceInCents,
		UserCount:            userCount,
	}
	if err := p.subscriptionRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to record subscription: %w", err)
	}

	p.logger.Info("subscription attached",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(status)),
	)
	p.publish(ctx, tenant.ID.String(), status, true)
	return nil
}

func (p *billingEventProcessor) handleSubscriptionUpdated(ctx context.Context, event *stripe.Event) error {
	var sub subscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription event: %w", err)
	}

	tenant, err := p.tenantRepo.GetByStripeSubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("subscription update for unknown tenant",
				zap.String("subscription_id", sub.ID))
			return nil
		}
		return err
	}

	status, isActive, err := MapStripeStatus(sub.Status)
	if err != nil {
		p.logger.Error("refusing subscription update with unmapped status",
			zap.String("subscription_id", sub.ID),
			zap.String("status", sub.Status),
		)
		return err
	}

	periodEnd := periodEndFromUnix(sub.CurrentPeriodEnd)
	if periodEnd == nil {
		p.logger.Warn("subscription event without current_period_end",
			zap.String("subscription_id", sub.ID))
	}
	if err := p.tenantRepo.UpdateSubscriptionState(ctx, tenant.ID, status, isActive, periodEnd); err != nil {
		return fmt.Errorf("failed to update tenant subscription state: %w", err)
	}

	priceInCents := int64(0)
	if len(sub.Items.Data) > 0 {
		priceInCents = sub.Items.Data[0].Price.UnitAmount
	}
	userCount, err := p.userRepo.CountByTenant(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to count tenant users: %w", err)
	}
	if err := p.subscriptionRepo.UpdateByStripeID(ctx, sub.ID, status, periodEnd, priceInCents, userCount); err != nil {
		return fmt.Errorf("failed to update subscription record: %w", err)
	}

	p.logger.Info("subscription updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("status", string(status)),
		zap.Bool("is_active", isActive),
	)
	p.publish(ctx, tenant.ID.String(), status, isActive)
	return nil
}

func (p *billingEventProcessor) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub subscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription event: %w", err)
	}

	tenant, err := p.tenantRepo.GetByStripeSubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("subscription delete for unknown tenant",
				zap.String("subscription_id", sub.ID))
			return nil
		}
		return err
	}

	if err := p.tenantRepo.UpdateSubscriptionState(ctx, tenant.ID, models.StatusCanceled, false, nil); err != nil {
		return fmt.Errorf("failed to cancel tenant subscription: %w", err)
	}
	if err := p.subscriptionRepo.UpdateStatusByStripeID(ctx, sub.ID, models.StatusCanceled); err != nil {
		return fmt.Errorf("failed to mark subscription record canceled: %w", err)
	}

	p.logger.Info("subscription canceled, tenant blocked",
		zap.String("tenant_id", tenant.ID.String()))
	p.publish(ctx, tenant.ID.String(), models.StatusCanceled, false)
	return nil
}

func (p *billingEventProcessor) handleInvoicePaymentSucceeded(ctx context.Context, event *stripe.Event) error {
	var inv invoiceEvent
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("failed to parse invoice event: %w", err)
	}
	if inv.Subscription == "" {
		p.logger.Info("ignoring invoice without subscription", zap.String("invoice_id", inv.ID))
		return nil
	}

	tenant, err := p.tenantRepo.GetByStripeSubscriptionID(ctx, inv.Subscription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("invoice for unknown tenant",
				zap.String("subscription_id", inv.Subscription))
			return nil
		}
		return err
	}

	if err := p.tenantRepo.UpdateSubscriptionState(ctx, tenant.ID, models.StatusActive, true, nil); err != nil {
		return fmt.Errorf("failed to reactivate tenant: %w", err)
	}

	now := time.Now()
	payment := &models.Payment{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		StripeInvoiceID: inv.ID,
		AmountInCents:   inv.AmountPaid,
		Status:          models.PaymentSucceeded,
		PaidAt:          &now,
	}
	if inv.PaymentIntent != "" {
		payment.StripePaymentIntentID = &inv.PaymentIntent
	}
	if err := p.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	p.logger.Info("invoice paid, tenant active",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int64("amount_in_cents", inv.AmountPaid),
	)
	p.publish(ctx, tenant.ID.String(), models.StatusActive, true)
	return nil
}

func (p *billingEventProcessor) handleInvoicePaymentFailed(ctx context.Context, event *stripe.Event) error {
	var inv invoiceEvent
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("failed to parse invoice event: %w", err)
	}
	if inv.Subscription == "" {
		p.logger.Info("ignoring invoice without subscription", zap.String("invoice_id", inv.ID))
		return nil
	}

	tenant, err := p.tenantRepo.GetByStripeSubscriptionID(ctx, inv.Subscription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("invoice for unknown tenant",
				zap.String("subscription_id", inv.Subscription))
			return nil
		}
		return err
	}

	if err := p.tenantRepo.UpdateSubscriptionState(ctx, tenant.ID, models.StatusPastDue, false, nil); err != nil {
		return fmt.Errorf("failed to block tenant: %w", err)
	}

	now := time.Now()
	payment := &models.Payment{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		StripeInvoiceID: inv.ID,
		AmountInCents:   inv.AmountDue,
		Status:          models.PaymentFailed,
		FailedAt:        &now,
	}
	if inv.PaymentIntent != "" {
		payment.StripePaymentIntentID = &inv.PaymentIntent
	}
	if err := p.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("failed to record failed payment: %w", err)
	}

	p.logger.Warn("invoice payment failed, tenant blocked",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int64("amount_in_cents", inv.AmountDue),
	)
	p.publish(ctx, tenant.ID.String(), models.StatusPastDue, false)
	return nil
}

func (p *billingEventProcessor) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session checkoutSessionEvent
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session event: %w", err)
	}
	if session.Subscription == "" {
		p.logger.Info("checkout session without subscription", zap.String("session_id", session.ID))
		return nil
	}

	tenant, ok, err := p.tenantFromMetadata(ctx, session.Metadata, event)
	if err != nil || !ok {
		return err
	}

	// Status and period come from the subscription events; the session only
	// links the subscription id early in case they arrive out of order.
	if err := p.tenantRepo.SetStripeSubscriptionID(ctx, tenant.ID, session.Subscription); err != nil {
		return fmt.Errorf("failed to link subscription: %w", err)
	}

	p.logger.Info("checkout completed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subscription_id", session.Subscription),
	)
	return nil
}

// tenantFromMetadata resolves the tenant_id stamped on checkout and
// subscription metadata. Missing or unknown tenants are logged and skipped so
// the sender does not retry an event that can never apply.
func (p *billingEventProcessor) tenantFromMetadata(ctx context.Context, metadata map[string]string, event *stripe.Event) (*models.Tenant, bool, error) {
	raw, found := metadata["tenant_id"]
	if !found || raw == "" {
		p.logger.Warn("billing event without tenant metadata",
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.ID),
		)
		return nil, false, nil
	}

	tenantID, err := uuid.Parse(raw)
	if err != nil {
		p.logger.Warn("billing event with malformed tenant metadata",
			zap.String("type", string(event.Type)),
			zap.String("tenant_id", raw),
		)
		return nil, false, nil
	}

	tenant, err := p.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("billing event for unknown tenant",
				zap.String("type", string(event.Type)),
				zap.String("tenant_id", raw),
			)
			return nil, false, nil
		}
		return nil, false, err
	}
	return tenant, true, nil
}

func (p *billingEventProcessor) publish(ctx context.Context, tenantID string, status models.SubscriptionStatus, isActive bool) {
	event := notify.SubscriptionEvent{
		TenantID:   tenantID,
		Status:     string(status),
		IsActive:   isActive,
		OccurredAt: time.Now(),
	}
	if err := p.broker.PublishSubscriptionEvent(ctx, event); err != nil {
		p.logger.Warn("failed to publish subscription event", zap.Error(err))
	}
}
