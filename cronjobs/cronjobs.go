package cronjobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"go-patrol/logger"
	"go-patrol/metrics"
	"go-patrol/types"
)

// Job names as they appear in logs and metrics.
const (
	JobCleanup  = "cleanup"
	JobBackfill = "backfill"
)

const jobTimeout = 10 * time.Minute

// Maintainer is the store maintenance the scheduler runs.
type Maintainer interface {
	Cleanup(ctx context.Context) (types.CleanupResult, error)
	Backfill(ctx context.Context) (types.BackfillResult, error)
}

// Schedule holds the cron specs for each job. An empty spec disables that job.
type Schedule struct {
	Cleanup  string
	Backfill string
}

// InitCronJobs registers the maintenance jobs and starts the scheduler.
// The caller stops it with Stop on shutdown.
func InitCronJobs(m Maintainer, s Schedule, met *metrics.Metrics, log logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	var jobs []string

	if s.Cleanup != "" {
		if _, err := c.AddFunc(s.Cleanup, func() { RunCleanup(m, met, log) }); err != nil {
			return nil, err
		}
		jobs = append(jobs, JobCleanup+"@"+s.Cleanup)
	}
	if s.Backfill != "" {
		if _, err := c.AddFunc(s.Backfill, func() { RunBackfill(m, met, log) }); err != nil {
			return nil, err
		}
		jobs = append(jobs, JobBackfill+"@"+s.Backfill)
	}

	log.Info("Starting cron jobs", logger.Strings("jobs", jobs))
	c.Start()
	return c, nil
}

// RunCleanup deletes duplicate incidents once.
func RunCleanup(m Maintainer, met *metrics.Metrics, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.Info("CronJob: duplicate cleanup running")
	res, err := m.Cleanup(ctx)
	if err != nil {
		log.Error("CronJob: duplicate cleanup failed", logger.Error(err))
		met.ObserveJob(JobCleanup, metrics.ResultJobFailed)
		return
	}
	result := metrics.ResultOK
	if res.Failed > 0 {
		result = metrics.ResultPartial
	}
	met.ObserveJob(JobCleanup, result)
}

// RunBackfill enriches stored incidents once.
func RunBackfill(m Maintainer, met *metrics.Metrics, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.Info("CronJob: enrichment backfill running")
	if _, err := m.Backfill(ctx); err != nil {
		log.Error("CronJob: enrichment backfill failed", logger.Error(err))
		met.ObserveJob(JobBackfill, metrics.ResultJobFailed)
		return
	}
	met.ObserveJob(JobBackfill, metrics.ResultOK)
}
