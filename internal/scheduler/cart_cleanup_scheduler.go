package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/roy-rc/sfstore/internal/app/service"
	"github.com/roy-rc/sfstore/pkg/logger"
)

// CartCleanupScheduler prunes abandoned guest carts on a cron schedule.
type CartCleanupScheduler struct {
	cron           *cron.Cron
	cartService    service.CartService
	schedule       string
	abandonedAfter time.Duration
}

func NewCartCleanupScheduler(cartService service.CartService, schedule string, abandonedAfter time.Duration) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:           cron.New(),
		cartService:    cartService,
		schedule:       schedule,
		abandonedAfter: abandonedAfter,
	}
}

func (s *CartCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled cart cleanup", map[string]interface{}{
			"abandoned_after": s.abandonedAfter.String(),
		})

		deleted, err := s.cartService.PruneAbandonedSessionCarts(s.abandonedAfter)
		if err != nil {
			logger.Error("Scheduled cart cleanup failed", err)
			return
		}

		logger.Info("Scheduled cart cleanup finished", map[string]interface{}{
			"deleted": deleted,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *CartCleanupScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Cart cleanup scheduler stopped", nil)
}
