package processor

import (
	"context"

	"wafflemarket/internal/app/reputation/service"
	"wafflemarket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически прогревает кеш температуры
// для пользователей, получавших отзывы за последние сутки
type CronScheduler struct {
	cron     *cron.Cron
	trustSvc service.TrustServiceInterface
}

func NewCronScheduler(trustSvc service.TrustServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(),
		trustSvc: trustSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info().Msg("Cron job triggered: refreshing trust scores")

		if err := s.trustSvc.RefreshRecentScores(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to refresh trust scores")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
