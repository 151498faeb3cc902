package usecase

import (
	"context"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notifier turns mail messages into outbox jobs for the dispatcher.
type notifier struct {
	outbox      repository.OutboxRepository
	maxAttempts int
	now         clock
	log         *zap.Logger
}

func newNotifier(outbox repository.OutboxRepository, config utils.EmailConfig, log *zap.Logger) *notifier {
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &notifier{
		outbox:      outbox,
		maxAttempts: maxAttempts,
		now:         time.Now,
		log:         log.With(zap.String("service", "notifier")),
	}
}

func (n *notifier) enqueue(ctx context.Context, kind entity.EmailKind, msg mailer.Message) (*entity.EmailJob, error) {
	now := n.now()
	job := &entity.EmailJob{
		ID:             uuid.New(),
		Kind:           kind,
		Recipient:      msg.To,
		Subject:        msg.Subject,
		TextBody:       msg.Text,
		HTMLBody:       msg.HTML,
		AttachmentName: msg.AttachmentName,
		Attachment:     msg.Attachment,
		MaxAttempts:    n.maxAttempts,
		NextAttemptAt:  now,
		Status:         entity.EmailJobPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := n.outbox.Enqueue(ctx, job); err != nil {
		return nil, err
	}

	n.log.Debug("Email job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("recipient", msg.To),
	)
	return job, nil
}
