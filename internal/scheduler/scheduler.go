// Package scheduler runs the service's background jobs on a single gocron
// scheduler: reservation reminders and password reset token cleanup.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// defaultJobTimeout bounds a single run of any job.
const defaultJobTimeout = 2 * time.Minute

var (
	service     *Service
	serviceOnce sync.Once
	serviceErr  error
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
	ErrNilTask        = errors.New("job task is required")
)

// Task is one run of a scheduled job. The context carries the job logger and
// is cancelled when the run exceeds the job timeout.
type Task func(ctx context.Context) error

// Service owns the gocron scheduler. Jobs never overlap themselves: a run
// that is still going when the next tick fires pushes that tick back.
type Service struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
	stopOnce  sync.Once
	stopErr   error
}

// Init initializes the scheduler singleton.
func Init() error {
	serviceOnce.Do(func() {
		sched, err := gocron.NewScheduler(
			gocron.WithGlobalJobOptions(
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
				gocron.WithEventListeners(
					gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
						log.Error().
							Str("job_id", jobID.String()).
							Str("job_name", jobName).
							Interface("panic", recoverData).
							Msg("Scheduler job panicked")
					}),
				),
			),
		)
		if err != nil {
			serviceErr = err
			return
		}
		service = &Service{scheduler: sched, timeout: defaultJobTimeout}
		log.Info().Msg("Scheduler initialized")
	})
	return serviceErr
}

func instance() (*Service, error) {
	if service == nil && serviceErr == nil {
		return nil, ErrNotInitialized
	}
	return service, serviceErr
}

// Start begins running scheduled jobs on the singleton scheduler.
func Start() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	log.Info().Int("jobs", len(svc.scheduler.Jobs())).Msg("Scheduler starting")
	svc.scheduler.Start()
	return nil
}

// Stop shuts down the singleton scheduler, waiting for running jobs.
func Stop() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	svc.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		svc.stopErr = svc.scheduler.Shutdown()
	})
	return svc.stopErr
}

// AddJob registers task on the singleton scheduler under a standard
// five-field cron expression.
func AddJob(name, cronExpr string, task Task) (gocron.Job, error) {
	svc, err := instance()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	if task == nil {
		return nil, ErrNilTask
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), svc.timeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		started := time.Now()
		if err := task(ctx); err != nil {
			jobLogger.Error().Err(err).Dur("duration", time.Since(started)).Msg("Scheduler job failed")
			return
		}
		jobLogger.Debug().Dur("duration", time.Since(started)).Msg("Scheduler job completed")
	}

	job, err := svc.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}
