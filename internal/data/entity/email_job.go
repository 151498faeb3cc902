package entity

import (
	"time"

	"github.com/google/uuid"
)

type EmailKind string

const (
	EmailOrderInvoice  EmailKind = "order_invoice"
	EmailOrderPaid     EmailKind = "order_paid"
	EmailOTP           EmailKind = "otp"
	EmailPasswordReset EmailKind = "password_reset"
)

type EmailJobStatus string

const (
	EmailJobPending EmailJobStatus = "pending"
	EmailJobSent    EmailJobStatus = "sent"
	EmailJobDead    EmailJobStatus = "dead"
)

// EmailJob is one outbox row. Attachment bytes travel with the job.
type EmailJob struct {
	ID             uuid.UUID      `db:"id"`
	Kind           EmailKind      `db:"kind"`
	Recipient      string         `db:"recipient"`
	Subject        string         `db:"subject"`
	TextBody       string         `db:"text_body"`
	HTMLBody       string         `db:"html_body"`
	AttachmentName string         `db:"attachment_name"`
	Attachment     []byte         `db:"attachment"`
	Attempts       int            `db:"attempts"`
	MaxAttempts    int            `db:"max_attempts"`
	NextAttemptAt  time.Time      `db:"next_attempt_at"`
	Status         EmailJobStatus `db:"status"`
	LastError      string         `db:"last_error"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
