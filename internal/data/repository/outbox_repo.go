package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	EnsureSchema(ctx context.Context) error
	Enqueue(ctx context.Context, job *entity.EmailJob) error
	// ClaimDue leases up to limit due jobs, counting the attempt and pushing
	// nextAttemptAt out by lease so no other worker picks them meanwhile.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.EmailJob, error)
	MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error
	Reschedule(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string, now time.Time) error
	MarkDead(ctx context.Context, id uuid.UUID, lastErr string, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error)
	PurgeSent(ctx context.Context, olderThan time.Time) (int64, error)
}

type outboxRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOutboxRepository(db database.PgxIface, log *zap.Logger) OutboxRepository {
	return &outboxRepository{
		db:  db,
		log: log.With(zap.String("repository", "outbox")),
	}
}

const emailJobColumns = `id, kind, recipient, subject, text_body, html_body, attachment_name,
		       attachment, attempts, max_attempts, next_attempt_at, status, last_error,
		       created_at, updated_at`

func (r *outboxRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS email_jobs (
			id              UUID PRIMARY KEY,
			kind            TEXT NOT NULL,
			recipient       TEXT NOT NULL,
			subject         TEXT NOT NULL,
			text_body       TEXT NOT NULL DEFAULT '',
			html_body       TEXT NOT NULL DEFAULT '',
			attachment_name TEXT NOT NULL DEFAULT '',
			attachment      BYTEA,
			attempts        INT NOT NULL DEFAULT 0,
			max_attempts    INT NOT NULL,
			next_attempt_at TIMESTAMPTZ NOT NULL,
			status          TEXT NOT NULL,
			last_error      TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_email_jobs_due ON email_jobs (status, next_attempt_at);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		r.log.Error("Failed to ensure outbox schema", zap.Error(err))
		return fmt.Errorf("ensure outbox schema: %w", err)
	}
	return nil
}

func (r *outboxRepository) Enqueue(ctx context.Context, job *entity.EmailJob) error {
	query := `
		INSERT INTO email_jobs (` + emailJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.Kind,
		job.Recipient,
		job.Subject,
		job.TextBody,
		job.HTMLBody,
		job.AttachmentName,
		job.Attachment,
		job.Attempts,
		job.MaxAttempts,
		job.NextAttemptAt,
		job.Status,
		job.LastError,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to enqueue email job",
			zap.Error(err),
			zap.String("kind", string(job.Kind)),
			zap.String("recipient", job.Recipient),
		)
		return fmt.Errorf("enqueue email job %s: %w", job.ID.String(), err)
	}
	return nil
}

func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.EmailJob, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT ` + emailJobColumns + `
		FROM email_jobs
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY next_attempt_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, entity.EmailJobPending, now, limit)
	if err != nil {
		r.log.Error("Failed to select due email jobs", zap.Error(err))
		return nil, fmt.Errorf("select due email jobs: %w", err)
	}

	jobs, err := scanEmailJobs(rows)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		return jobs, nil
	}

	ids := make([]uuid.UUID, len(jobs))
	leaseUntil := now.Add(lease)
	for i, job := range jobs {
		ids[i] = job.ID
		job.Attempts++
		job.NextAttemptAt = leaseUntil
		job.UpdatedAt = now
	}

	update := `
		UPDATE email_jobs
		SET attempts = attempts + 1, next_attempt_at = $1, updated_at = $2
		WHERE id = ANY($3)
	`
	if _, err := tx.Exec(ctx, update, leaseUntil, now, ids); err != nil {
		r.log.Error("Failed to lease email jobs", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("lease email jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return jobs, nil
}

func scanEmailJobs(rows pgx.Rows) ([]*entity.EmailJob, error) {
	defer rows.Close()

	jobs := make([]*entity.EmailJob, 0)
	for rows.Next() {
		var job entity.EmailJob
		err := rows.Scan(
			&job.ID,
			&job.Kind,
			&job.Recipient,
			&job.Subject,
			&job.TextBody,
			&job.HTMLBody,
			&job.AttachmentName,
			&job.Attachment,
			&job.Attempts,
			&job.MaxAttempts,
			&job.NextAttemptAt,
			&job.Status,
			&job.LastError,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan email job row: %w", err)
		}
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email job rows: %w", err)
	}
	return jobs, nil
}

func (r *outboxRepository) setStatus(ctx context.Context, id uuid.UUID, status entity.EmailJobStatus, nextAttemptAt *time.Time, lastErr string, now time.Time) error {
	query := `
		UPDATE email_jobs
		SET status = $1, next_attempt_at = COALESCE($2, next_attempt_at), last_error = $3, updated_at = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(ctx, query, status, nextAttemptAt, lastErr, now, id)
	if err != nil {
		r.log.Error("Failed to update email job",
			zap.Error(err),
			zap.String("job_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update email job %s: %w", id.String(), err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("email job %s not found", id.String())
	}
	return nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.setStatus(ctx, id, entity.EmailJobSent, nil, "", now)
}

func (r *outboxRepository) Reschedule(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string, now time.Time) error {
	return r.setStatus(ctx, id, entity.EmailJobPending, &nextAttemptAt, lastErr, now)
}

func (r *outboxRepository) MarkDead(ctx context.Context, id uuid.UUID, lastErr string, now time.Time) error {
	return r.setStatus(ctx, id, entity.EmailJobDead, nil, lastErr, now)
}

func (r *outboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	query := `SELECT ` + emailJobColumns + ` FROM email_jobs WHERE id = $1`

	var job entity.EmailJob
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Kind,
		&job.Recipient,
		&job.Subject,
		&job.TextBody,
		&job.HTMLBody,
		&job.AttachmentName,
		&job.Attachment,
		&job.Attempts,
		&job.MaxAttempts,
		&job.NextAttemptAt,
		&job.Status,
		&job.LastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to find email job", zap.Error(err), zap.String("job_id", id.String()))
		return nil, fmt.Errorf("find email job %s: %w", id.String(), err)
	}
	return &job, nil
}

func (r *outboxRepository) PurgeSent(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM email_jobs WHERE status = $1 AND updated_at < $2`, entity.EmailJobSent, olderThan)
	if err != nil {
		r.log.Error("Failed to purge sent email jobs", zap.Error(err))
		return 0, fmt.Errorf("purge sent email jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
