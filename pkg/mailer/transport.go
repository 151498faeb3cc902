package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

const (
	implicitTLSPort = 465
	dialTimeout     = 10 * time.Second
)

// transport delivers gomail messages over a connection whose I/O stops once ctx is done.
type transport struct {
	host     string
	port     int
	user     string
	password string
}

func (t *transport) send(ctx context.Context, m *gomail.Message) (err error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.host, strconv.Itoa(t.port)))
	if err != nil {
		return err
	}

	// unblock any pending read or write once ctx is done
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer func() {
		stop()
		if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
			err = errors.Join(ctxErr, err)
		}
	}()

	tlsConfig := &tls.Config{ServerName: t.host}
	if t.port == implicitTLSPort {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if t.port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if t.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", t.user, t.password, t.host)); err != nil {
				return err
			}
		}
	}

	return gomail.Send(gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := c.Rcpt(addr); err != nil {
				return err
			}
		}

		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return c.Quit()
	}), m)
}
