package jobs

import (
	"fmt"
	"log"

	"BudgetDeskSaas/internal/logger"
	"BudgetDeskSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	snapConfig := NewDefaultSnapshotConfig()

	// Override snapshot config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["snapshot_schedule"].(string); ok && schedule != "" {
			snapConfig.Schedule = schedule
		}
		if batchSize, ok := s.config["snapshot_batch_size"].(int); ok && batchSize > 0 {
			snapConfig.BatchSize = batchSize
		}
		if tz, ok := s.config["time_zone"].(string); ok && tz != "" {
			snapConfig.TimeZone = tz
		}
	}

	if err := RunAccuracySnapshotScheduler(snapConfig, s.db); err != nil {
		return fmt.Errorf("failed to start accuracy snapshot scheduler: %v", err)
	}

	logger.GlobalLogger.LogAudit("Cron service started with accuracy snapshot scheduler")
	log.Println("Cron service started — accuracy snapshots scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
