package jobs

import (
	"context"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/notify"
	"comandapos/internal/repositories"

	"go.uber.org/zap"
)

const sweepBatchSize = 500

// TrialSweeper expires overdue trials in bulk. Access checks already expire
// trials lazily on read; the sweeper only catches tenants nobody has looked
// at, so their state does not linger stale for days.
type TrialSweeper struct {
	tenantRepo repositories.TenantRepository
	broker     notify.Broker
	logger     *zap.Logger
}

func NewTrialSweeper(tenantRepo repositories.TenantRepository, broker notify.Broker, logger *zap.Logger) *TrialSweeper {
	return &TrialSweeper{
		tenantRepo: tenantRepo,
		broker:     broker,
		logger:     logger,
	}
}

func (s *TrialSweeper) Sweep(ctx context.Context) {
	// Access checks count remaining days with a ceiling, so a trial only
	// counts as expired once it is a full day past its end.
	cutoff := time.Now().Add(-24 * time.Hour)
	ids, err := s.tenantRepo.ListExpiredTrialIDs(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.logger.Error("trial sweep query failed", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	expired := 0
	for _, id := range ids {
		ok, err := s.tenantRepo.ExpireTrial(ctx, id)
		if err != nil {
			s.logger.Error("failed to expire trial",
				zap.String("tenant_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			// A subscription was attached between the listing and the
			// update. Leave the tenant alone.
			continue
		}
		expired++

		event := notify.SubscriptionEvent{
			TenantID:   id.String(),
			Status:     string(models.StatusUnpaid),
			IsActive:   false,
			OccurredAt: time.Now(),
		}
		if err := s.broker.PublishSubscriptionEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish trial expiry event", zap.Error(err))
		}
	}

	s.logger.Info("trial sweep completed",
		zap.Int("candidates", len(ids)),
		zap.Int("expired", expired),
	)
}
