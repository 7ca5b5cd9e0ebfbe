package jobs

import (
	"context"
	"fmt"
	"time"

	"BudgetDeskSaas/api/dash/forecast"
	"BudgetDeskSaas/internal/config"
	"BudgetDeskSaas/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// SnapshotConfig holds configuration for the nightly accuracy snapshot job
type SnapshotConfig struct {
	Schedule  string
	BatchSize int
	TimeZone  string
}

// NewDefaultSnapshotConfig creates a new SnapshotConfig with default values
func NewDefaultSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{
		Schedule:  config.DefaultSnapshotSchedule,
		BatchSize: config.SnapshotBatchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

// RunAccuracySnapshotScheduler starts the cron job that records each
// entity's forecast accuracy once per night.
func RunAccuracySnapshotScheduler(cfg *SnapshotConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultSnapshotSchedule
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.SnapshotBatchSize
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := SnapshotForecastAccuracy(db, cfg.BatchSize); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Accuracy snapshot failed: %v", err))
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule accuracy snapshot: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit("Accuracy snapshot scheduler started")

	return nil
}

// SnapshotForecastAccuracy walks every entity/fiscal-year pair with recorded
// flows, runs the variance engine and stores the most recently completed
// month's result. Re-running on the same day overwrites that day's rows.
func SnapshotForecastAccuracy(db *pgxpool.Pool, batchSize int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rows, err := db.Query(ctx, `
        SELECT DISTINCT entity_id, fiscal_year
        FROM budget_monthly_flows
        ORDER BY entity_id, fiscal_year
        LIMIT $1`, batchSize)
	if err != nil {
		return fmt.Errorf("snapshot targets query: %v", err)
	}
	type target struct {
		entityID   string
		fiscalYear int
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.entityID, &t.fiscalYear); err == nil {
			targets = append(targets, t)
		}
	}
	rows.Close()

	snapshotted := 0
	for _, t := range targets {
		if err := snapshotOne(ctx, db, t.entityID, t.fiscalYear); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Snapshot skipped for %s/%d: %v", t.entityID, t.fiscalYear, err))
			continue
		}
		snapshotted++
	}

	logger.GlobalLogger.LogAudit(fmt.Sprintf("Accuracy snapshot complete: %d of %d entities", snapshotted, len(targets)))
	return nil
}

func snapshotOne(ctx context.Context, db *pgxpool.Pool, entityID string, fiscalYear int) error {
	flows, err := forecast.FetchMonthlyFlows(ctx, db, entityID, fiscalYear)
	if err != nil {
		return err
	}
	cumulative, err := forecast.FetchCumulativeForecast(ctx, db, entityID, fiscalYear)
	if err != nil {
		return err
	}
	monthly := forecast.DeriveMonthlySeries(cumulative)

	lastActualIdx := -1
	for i, f := range flows {
		if f.Actual.IsPositive() {
			lastActualIdx = i
		}
	}
	if lastActualIdx < 0 {
		// Nothing recorded yet, nothing to snapshot.
		return nil
	}
	latest := flows[lastActualIdx]

	var mf forecast.MonthlyForecastPoint
	for _, m := range monthly {
		if m.MonthIndex == latest.MonthIndex {
			mf = m
			break
		}
	}
	rec := forecast.ComputeVariance(latest.Actual, mf.Forecast)
	status := forecast.ClassifyVarianceStatus(rec.Variance, rec.IsExact)

	_, err = db.Exec(ctx, `
        INSERT INTO forecast_accuracy_snapshots
            (snapshot_date, entity_id, fiscal_year, month_index, month_name,
             actual_amount, forecast_amount, variance_amount, accuracy_percent, variance_status, created_at)
        VALUES (CURRENT_DATE, $1, $2, $3, $4, $5, $6, $7, $8, $9, now())
        ON CONFLICT (snapshot_date, entity_id, fiscal_year)
        DO UPDATE SET month_index = EXCLUDED.month_index,
                      month_name = EXCLUDED.month_name,
                      actual_amount = EXCLUDED.actual_amount,
                      forecast_amount = EXCLUDED.forecast_amount,
                      variance_amount = EXCLUDED.variance_amount,
                      accuracy_percent = EXCLUDED.accuracy_percent,
                      variance_status = EXCLUDED.variance_status,
                      created_at = now()`,
		entityID, fiscalYear, latest.MonthIndex, latest.MonthName,
		rec.Actual, rec.Forecast, rec.Variance, rec.AccuracyPercent, status.String())
	return err
}
