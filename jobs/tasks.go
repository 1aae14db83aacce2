package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCaisseDailySummary rolls up the previous day's sales into
	// caisse_daily_summaries.
	TaskCaisseDailySummary = "caisse:daily_summary"
	// TaskStatsWarmup pre-computes the daily totals cache after a rollup.
	TaskStatsWarmup = "caisse:stats_warmup"
)

// DailySummaryPayload selects the day to summarise. An empty Day means
// "yesterday" at processing time.
type DailySummaryPayload struct {
	Day string `json:"day,omitempty"`
}

// NewDailySummaryTask constructs the rollup task.
func NewDailySummaryTask(payload DailySummaryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCaisseDailySummary, data), nil
}

// NewStatsWarmupTask constructs the cache warmup task.
func NewStatsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskStatsWarmup, nil)
}

func payloadDay(payload DailySummaryPayload, now time.Time) (time.Time, error) {
	if payload.Day == "" {
		y := now.AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", payload.Day)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueDailySummary enqueues a rollup for the given day.
func (c *Client) EnqueueDailySummary(ctx context.Context, payload DailySummaryPayload) (*asynq.TaskInfo, error) {
	task, err := NewDailySummaryTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
