package worker

import (
	"context"
	"time"

	"kalamkart/internal/data/repository"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	otpPurgeInterval    = 10 * time.Minute
	outboxPurgeInterval = time.Hour
	outboxRetention     = 7 * 24 * time.Hour
	limiterSweepPeriod  = 5 * time.Minute
	jobTimeout          = 30 * time.Second
)

// Sweeper drops idle state; the HTTP rate limiter implements it.
type Sweeper interface {
	Sweep() int
}

type scheduledJob struct {
	name  string
	every time.Duration
	run   func(ctx context.Context) error
}

// Scheduler owns the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *zap.Logger
}

func NewScheduler(
	orders usecase.OrderService,
	repo *repository.Repository,
	limiter Sweeper,
	config utils.RepairConfig,
	log *zap.Logger,
) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	log = log.With(zap.String("worker", "scheduler"))

	interval := config.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	jobs := []scheduledJob{
		{"order-repair", interval, func(ctx context.Context) error {
			_, err := orders.Reconcile(ctx)
			return err
		}},
		{"otp-purge", otpPurgeInterval, func(ctx context.Context) error {
			n, err := repo.OTP.DeleteExpired(ctx, time.Now())
			if n > 0 {
				log.Info("Expired OTPs purged", zap.Int64("count", n))
			}
			return err
		}},
		{"outbox-purge", outboxPurgeInterval, func(ctx context.Context) error {
			n, err := repo.Outbox.PurgeSent(ctx, time.Now().Add(-outboxRetention))
			if n > 0 {
				log.Info("Sent email jobs purged", zap.Int64("count", n))
			}
			return err
		}},
	}
	if limiter != nil {
		jobs = append(jobs, scheduledJob{"ratelimit-sweep", limiterSweepPeriod, func(context.Context) error {
			limiter.Sweep()
			return nil
		}})
	}

	for _, j := range jobs {
		j := j
		_, err := s.NewJob(
			gocron.DurationJob(j.every),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()

				if err := j.run(ctx); err != nil {
					log.Error("Scheduled job failed", zap.String("job", j.name), zap.Error(err))
				}
			}),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, err
		}
	}

	return &Scheduler{scheduler: s, log: log}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.scheduler.Jobs())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
