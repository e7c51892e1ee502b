package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// RestockNotifier emails waiting customers once their product is back.
type RestockNotifier interface {
	NotifyAvailable(ctx context.Context) (int, error)
}

// ViewLogCompactor drops view logs older than the retention window.
type ViewLogCompactor interface {
	Compact(ctx context.Context, olderThan time.Duration) (int, error)
}

// MaintenanceScheduler runs the storefront's periodic jobs.
type MaintenanceScheduler struct {
	cron      *cron.Cron
	cfg       config.SchedulerConfig
	restock   RestockNotifier
	analytics ViewLogCompactor
}

func NewMaintenanceScheduler(cfg config.SchedulerConfig, restock RestockNotifier, analytics ViewLogCompactor) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:      cron.New(),
		cfg:       cfg,
		restock:   restock,
		analytics: analytics,
	}
}

// Start registers both jobs and starts the cron runner.
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RestockCron, s.RunRestock); err != nil {
		logger.Error("Failed to add cron job for restock notifications", err, map[string]interface{}{
			"schedule": s.cfg.RestockCron,
		})
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.CompactionCron, s.RunCompaction); err != nil {
		logger.Error("Failed to add cron job for view log compaction", err, map[string]interface{}{
			"schedule": s.cfg.CompactionCron,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"restock_cron":    s.cfg.RestockCron,
		"compaction_cron": s.cfg.CompactionCron,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

func (s *MaintenanceScheduler) RunRestock() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.restock.NotifyAvailable(ctx)
	if err != nil {
		logger.Error("Scheduled restock notification failed", err, map[string]interface{}{
			"sent": sent,
		})
		return
	}
	if sent > 0 {
		logger.Info("Restock notifications sent", map[string]interface{}{
			"sent": sent,
		})
	}
}

func (s *MaintenanceScheduler) RunCompaction() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.analytics.Compact(ctx, s.cfg.ViewLogRetention)
	if err != nil {
		logger.Error("Scheduled view log compaction failed", err, nil)
		return
	}
	logger.Info("View logs compacted", map[string]interface{}{
		"removed":   removed,
		"retention": s.cfg.ViewLogRetention.String(),
	})
}
