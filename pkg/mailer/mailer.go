// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kalamkart/pkg/utils"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrUnavailable is returned while the breaker refuses calls.
var ErrUnavailable = errors.New("mail provider unavailable")

type Message struct {
	To             string
	Subject        string
	Text           string
	HTML           string
	AttachmentName string
	Attachment     []byte
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	from    string
	send    func(ctx context.Context, m *gomail.Message) error
	breaker *gobreaker.CircuitBreaker[struct{}]
	log     *zap.Logger
}

// NewSMTPSender builds a sender whose sends stop at the context deadline.
func NewSMTPSender(config utils.EmailConfig, log *zap.Logger) *SMTPSender {
	tr := &transport{
		host:     config.Host,
		port:     config.Port,
		user:     config.User,
		password: config.Password,
	}

	from := config.From
	if from == "" {
		from = config.User
	}

	return &SMTPSender{
		from:    from,
		send:    tr.send,
		breaker: newBreaker("smtp", log),
		log:     log.With(zap.String("component", "mailer")),
	}
}

func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker[struct{}] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn("Circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return gobreaker.NewCircuitBreaker[struct{}](st)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, "KalamKart")
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTML != "" && msg.Text != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	if len(msg.Attachment) > 0 {
		data := msg.Attachment
		m.Attach(msg.AttachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(ctx, m)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("send to %s: %w", msg.To, ErrUnavailable)
		}
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}

	s.log.Debug("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogSender only logs. It stands in when no SMTP host is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("component", "mailer"))}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("Email delivery skipped, SMTP not configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachment_bytes", len(msg.Attachment)),
	)
	return nil
}
