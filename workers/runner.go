package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gymdesk/activity"
	"gymdesk/billing"
	"gymdesk/metrics"
	"gymdesk/reports"

	"github.com/google/uuid"
)

const (
	JOB_UPDATE_MEMBERS_ACTIVITY = "update_members_activity_status"
	JOB_SEND_BILLING_MESSAGES   = "send_billing_messages"
	JOB_SAVE_DAILY_REPORT       = "save_daily_report"
)

var ErrUnknownJob = errors.New("unknown job")

// JobFunc runs one job and returns a JSON-friendly summary.
type JobFunc func(ctx context.Context) (any, error)

type Job struct {
	Name     string
	Interval time.Duration // 0 means "only on demand"
	Run      JobFunc
}

// Runner owns the periodic jobs of the service. Each job runs on its own
// ticker; a job never overlaps with itself.
type Runner struct {
	jobs    map[string]Job
	locks   map[string]*sync.Mutex
	metrics *metrics.Metrics
	timeout time.Duration
}

type Config struct {
	ActivityInterval time.Duration
	BillingInterval  time.Duration
	ReportInterval   time.Duration
	BillingBatchSize int
	JobTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.BillingBatchSize <= 0 {
		c.BillingBatchSize = billing.DefaultBatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 10 * time.Minute
	}
	return c
}

func NewRunner(m *metrics.Metrics, timeout time.Duration, jobs ...Job) *Runner {
	r := &Runner{
		jobs:    make(map[string]Job, len(jobs)),
		locks:   make(map[string]*sync.Mutex, len(jobs)),
		metrics: m,
		timeout: timeout,
	}
	for _, j := range jobs {
		r.jobs[j.Name] = j
		r.locks[j.Name] = &sync.Mutex{}
	}
	return r
}

// New registers the three back-office jobs.
func New(cfg Config, engine *activity.Engine, dispatcher *billing.Dispatcher, snapshotter *reports.Snapshotter, m *metrics.Metrics) *Runner {
	cfg = cfg.withDefaults()
	return NewRunner(m, cfg.JobTimeout,
		Job{
			Name:     JOB_UPDATE_MEMBERS_ACTIVITY,
			Interval: cfg.ActivityInterval,
			Run: func(ctx context.Context) (any, error) {
				return engine.UpdateAllActive(ctx)
			},
		},
		Job{
			Name:     JOB_SEND_BILLING_MESSAGES,
			Interval: cfg.BillingInterval,
			Run: func(ctx context.Context) (any, error) {
				return dispatcher.DispatchPending(ctx, cfg.BillingBatchSize)
			},
		},
		Job{
			Name:     JOB_SAVE_DAILY_REPORT,
			Interval: cfg.ReportInterval,
			Run: func(ctx context.Context) (any, error) {
				return snapshotter.CreateReport(ctx, time.Time{})
			},
		},
	)
}

func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named job synchronously.
func (r *Runner) Run(ctx context.Context, name string) (any, error) {
	job, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownJob)
	}

	lock := r.locks[name]
	lock.Lock()
	defer lock.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	start := time.Now()
	out, err := job.Run(ctx)
	took := time.Since(start)
	r.metrics.ObserveJob(name, took, err)

	if err != nil {
		slog.Error("workers: job failed", "job", name, "run_id", runID, "took", took, "err", err)
		return out, err
	}
	slog.Info("workers: job done", "job", name, "run_id", runID, "took", took)
	return out, nil
}

// Start launches one goroutine per job with an interval. Each job runs once
// right away and then on every tick, so a restart never skips a day. It
// returns immediately; the goroutines stop when ctx is done.
func (r *Runner) Start(ctx context.Context) {
	for _, name := range r.Names() {
		job := r.jobs[name]
		if job.Interval <= 0 {
			slog.Info("workers: job runs on demand only", "job", name)
			continue
		}

		go func(job Job) {
			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()

			_, _ = r.Run(ctx, job.Name)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_, _ = r.Run(ctx, job.Name)
				}
			}
		}(job)
		slog.Info("workers: job scheduled", "job", name, "every", job.Interval)
	}
}
