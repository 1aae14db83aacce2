package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gescom-app/gescom/internal/jobs"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Summary   *SummaryJob
	Metrics   *jobmetrics.Metrics
	Cron      []CronRegistration
}

// DefaultCron returns the standing schedule: the rollup runs nightly and the
// warmup shortly after, both in UTC.
func DefaultCron() []CronRegistration {
	return []CronRegistration{
		{Spec: "10 2 * * *", Task: mustTask(NewDailySummaryTask(DailySummaryPayload{}))},
		{Spec: "20 2 * * *", Task: NewStatsWarmupTask()},
	}
}

func mustTask(t *asynq.Task, err error) *asynq.Task {
	if err != nil {
		panic(err)
	}
	return t
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Summary == nil {
		return nil, errors.New("jobs: summary job is required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	track := func(job string, fn asynq.HandlerFunc) asynq.HandlerFunc {
		return func(ctx context.Context, t *asynq.Task) error {
			return cfg.Metrics.Track(job).End(fn(ctx, t))
		}
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCaisseDailySummary, track("caisse_daily_summary", cfg.Summary.HandleDailySummary))
	mux.HandleFunc(TaskStatsWarmup, track("caisse_stats_warmup", cfg.Summary.HandleStatsWarmup))

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}
