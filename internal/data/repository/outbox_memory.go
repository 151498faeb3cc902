package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kalamkart/internal/data/entity"

	"github.com/google/uuid"
)

// memoryOutboxRepository keeps jobs in process. Jobs do not survive a restart.
type memoryOutboxRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.EmailJob
}

func NewMemoryOutboxRepository() OutboxRepository {
	return &memoryOutboxRepository{jobs: make(map[uuid.UUID]*entity.EmailJob)}
}

func (r *memoryOutboxRepository) EnsureSchema(context.Context) error {
	return nil
}

func (r *memoryOutboxRepository) Enqueue(_ context.Context, job *entity.EmailJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("enqueue email job %s: %w", job.ID.String(), ErrDuplicateKey)
	}

	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

func (r *memoryOutboxRepository) ClaimDue(_ context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.EmailJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := make([]*entity.EmailJob, 0)
	for _, job := range r.jobs {
		if job.Status == entity.EmailJobPending && !job.NextAttemptAt.After(now) {
			due = append(due, job)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*entity.EmailJob, len(due))
	for i, job := range due {
		job.Attempts++
		job.NextAttemptAt = now.Add(lease)
		job.UpdatedAt = now

		copied := *job
		claimed[i] = &copied
	}
	return claimed, nil
}

func (r *memoryOutboxRepository) update(id uuid.UUID, fn func(job *entity.EmailJob)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("email job %s not found", id.String())
	}
	fn(job)
	return nil
}

func (r *memoryOutboxRepository) MarkSent(_ context.Context, id uuid.UUID, now time.Time) error {
	return r.update(id, func(job *entity.EmailJob) {
		job.Status = entity.EmailJobSent
		job.LastError = ""
		job.UpdatedAt = now
	})
}

func (r *memoryOutboxRepository) Reschedule(_ context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string, now time.Time) error {
	return r.update(id, func(job *entity.EmailJob) {
		job.Status = entity.EmailJobPending
		job.NextAttemptAt = nextAttemptAt
		job.LastError = lastErr
		job.UpdatedAt = now
	})
}

func (r *memoryOutboxRepository) MarkDead(_ context.Context, id uuid.UUID, lastErr string, now time.Time) error {
	return r.update(id, func(job *entity.EmailJob) {
		job.Status = entity.EmailJobDead
		job.LastError = lastErr
		job.UpdatedAt = now
	})
}

func (r *memoryOutboxRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *memoryOutboxRepository) PurgeSent(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for id, job := range r.jobs {
		if job.Status == entity.EmailJobSent && job.UpdatedAt.Before(olderThan) {
			delete(r.jobs, id)
			purged++
		}
	}
	return purged, nil
}
