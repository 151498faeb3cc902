// Package worker runs the background jobs: outbox email delivery and scheduled maintenance.
package worker

import (
	"context"
	"sync"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/metrics"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

const (
	claimBatch = 10
	claimLease = 2 * time.Minute
	// a send must finish before the lease lets another worker claim the job
	sendTimeout = claimLease / 2
)

// Dispatcher drains the email outbox with a fixed pool of workers.
type Dispatcher struct {
	outbox   repository.OutboxRepository
	sender   mailer.Sender
	workers  int
	poll     time.Duration
	base     time.Duration
	maxDelay time.Duration
	now      func() time.Time
	log      *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewDispatcher(outbox repository.OutboxRepository, sender mailer.Sender, config utils.EmailConfig, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		outbox:   outbox,
		sender:   sender,
		workers:  config.Workers,
		poll:     config.PollInterval,
		base:     config.BaseBackoff,
		maxDelay: config.MaxBackoff,
		now:      time.Now,
		log:      log.With(zap.String("worker", "email")),
	}

	if d.workers <= 0 {
		d.workers = 2
	}
	if d.poll <= 0 {
		d.poll = 5 * time.Second
	}
	if d.base <= 0 {
		d.base = 30 * time.Second
	}
	if d.maxDelay <= 0 {
		d.maxDelay = 30 * time.Minute
	}
	return d
}

// Start launches the workers. They stop when ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.loop(ctx, i)
	}
	d.log.Info("Email dispatcher started", zap.Int("workers", d.workers), zap.Duration("poll", d.poll))
}

// Stop cancels the workers and waits for in-flight sends.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	d.log.Info("Email dispatcher stopped")
}

func (d *Dispatcher) loop(ctx context.Context, id int) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		// drain before sleeping
		for {
			n, err := d.RunOnce(ctx)
			if err != nil {
				d.log.Error("Failed to claim email jobs", zap.Error(err), zap.Int("worker_id", id))
				break
			}
			if n < claimBatch || ctx.Err() != nil {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch of due jobs and attempts each. It returns how many were claimed.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	jobs, err := d.outbox.ClaimDue(ctx, d.now(), claimLease, claimBatch)
	if err != nil {
		return 0, err
	}

	for _, job := range jobs {
		d.deliver(ctx, job)
	}
	return len(jobs), nil
}

func (d *Dispatcher) deliver(ctx context.Context, job *entity.EmailJob) {
	// the claim already counted this attempt
	log := d.log.With(
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("attempt", job.Attempts),
	)

	msg := mailer.Message{
		To:             job.Recipient,
		Subject:        job.Subject,
		Text:           job.TextBody,
		HTML:           job.HTMLBody,
		AttachmentName: job.AttachmentName,
		Attachment:     job.Attachment,
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	sendErr := d.sender.Send(sendCtx, msg)
	cancel()
	now := d.now()
	// bookkeeping must land even when shutdown cancelled the send
	store := context.WithoutCancel(ctx)

	if sendErr == nil {
		if err := d.outbox.MarkSent(store, job.ID, now); err != nil {
			log.Error("Failed to mark email sent", zap.Error(err))
		}
		metrics.EmailDeliveries.WithLabelValues(string(job.Kind), "sent").Inc()
		log.Info("Email sent", zap.String("recipient", job.Recipient))
		return
	}

	if job.Attempts >= job.MaxAttempts {
		if err := d.outbox.MarkDead(store, job.ID, sendErr.Error(), now); err != nil {
			log.Error("Failed to mark email dead", zap.Error(err))
		}
		metrics.EmailDeliveries.WithLabelValues(string(job.Kind), "dead").Inc()
		log.Error("Email abandoned after max attempts", zap.Error(sendErr), zap.String("recipient", job.Recipient))
		return
	}

	delay := Backoff(d.base, d.maxDelay, job.Attempts)
	if err := d.outbox.Reschedule(store, job.ID, now.Add(delay), sendErr.Error(), now); err != nil {
		log.Error("Failed to reschedule email", zap.Error(err))
	}
	metrics.EmailDeliveries.WithLabelValues(string(job.Kind), "retry").Inc()
	log.Warn("Email send failed, will retry", zap.Error(sendErr), zap.Duration("delay", delay))
}

// Backoff returns base * 2^(attempt-1), capped at ceiling.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	if delay > ceiling {
		return ceiling
	}
	return delay
}
