package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubscriptionEvent announces a tenant's billing state change to connected
// clients (the payment banner polls or listens for these).
type SubscriptionEvent struct {
	TenantID   string    `json:"tenant_id"`
	Status     string    `json:"status"`
	IsActive   bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Broker is a per-tenant publish/subscribe channel for subscription events.
type Broker interface {
	PublishSubscriptionEvent(ctx context.Context, event SubscriptionEvent) error
	// SubscribeTenant returns a channel of events for one tenant and a close
	// function that must be called when the consumer disconnects.
	SubscribeTenant(ctx context.Context, tenantID uuid.UUID) (<-chan SubscriptionEvent, func(), error)
}

type redisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client, logger *zap.Logger) Broker {
	return &redisBroker{client: client, logger: logger}
}

func channelForTenant(tenantID string) string {
	return fmt.Sprintf("comandapos:tenant:%s:subscription", tenantID)
}

func (b *redisBroker) PublishSubscriptionEvent(ctx context.Context, event SubscriptionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelForTenant(event.TenantID), payload).Err()
}

func (b *redisBroker) SubscribeTenant(ctx context.Context, tenantID uuid.UUID) (<-chan SubscriptionEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, channelForTenant(tenantID.String()))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	events := make(chan SubscriptionEvent)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event SubscriptionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("dropping malformed subscription event", zap.Error(err))
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	closer := func() {
		if err := pubsub.Close(); err != nil {
			b.logger.Warn("failed to close tenant subscription channel", zap.Error(err))
		}
	}
	return events, closer, nil
}
