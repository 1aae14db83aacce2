package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gescom-app/gescom/internal/caisse"
)

// SummaryJob rolls daily sales into caisse_daily_summaries and keeps the
// stats cache warm.
type SummaryJob struct {
	pool   *pgxpool.Pool
	stats  *caisse.Stats
	logger *slog.Logger
}

// NewSummaryJob constructs the rollup job.
func NewSummaryJob(pool *pgxpool.Pool, stats *caisse.Stats, logger *slog.Logger) *SummaryJob {
	return &SummaryJob{pool: pool, stats: stats, logger: logger}
}

// HandleDailySummary processes TaskCaisseDailySummary tasks. The upsert makes
// re-running a day safe.
func (j *SummaryJob) HandleDailySummary(ctx context.Context, t *asynq.Task) error {
	var payload DailySummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	day, err := payloadDay(payload, time.Now().UTC())
	if err != nil {
		j.logger.Warn("daily summary: bad day", slog.String("day", payload.Day))
		return asynq.SkipRetry
	}
	next := day.AddDate(0, 0, 1)

	_, err = j.pool.Exec(ctx, `
		INSERT INTO caisse_daily_summaries (day, ventes_count, total)
		SELECT $1::date,
		       COUNT(*),
		       COALESCE(SUM(montant - COALESCE(reduction, 0)), 0)
		FROM caisse_ventes
		WHERE date_vente >= $1 AND date_vente < $2
		ON CONFLICT (day) DO UPDATE
		SET ventes_count = EXCLUDED.ventes_count,
		    total        = EXCLUDED.total,
		    computed_at  = now()
	`, day, next)
	if err != nil {
		j.logger.Error("daily summary", slog.Any("error", err))
		return err
	}
	j.logger.Info("daily summary done",
		slog.String("job", "caisse_daily_summary"),
		slog.String("day", day.Format("2006-01-02")))
	return nil
}

// HandleStatsWarmup processes TaskStatsWarmup tasks by priming the rolling
// 30-day window in the cache.
func (j *SummaryJob) HandleStatsWarmup(ctx context.Context, t *asynq.Task) error {
	if j.stats == nil {
		return nil
	}
	to := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)
	if _, err := j.stats.Daily(ctx, from, to); err != nil {
		j.logger.Error("stats warmup", slog.Any("error", err))
		return err
	}
	j.logger.Info("stats warmup done", slog.String("job", "caisse_stats_warmup"))
	return nil
}
