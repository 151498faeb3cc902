package mailer

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func listen(t *testing.T) (net.Listener, *transport) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	return ln, &transport{host: "127.0.0.1", port: addr.Port}
}

func testMessage() *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", "shop@kalamkart.test")
	m.SetHeader("To", "buyer@example.com")
	m.SetHeader("Subject", "Your KalamKart Order Invoice")
	m.SetBody("text/plain", "Thanks for shopping")
	return m
}

func TestTransport_StalledServerStopsAtDeadline(t *testing.T) {
	ln, tr := listen(t)

	// accept and never greet
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(5 * time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tr.send(ctx, testMessage())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTransport_Delivers(t *testing.T) {
	ln, tr := listen(t)

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(line string) { conn.Write([]byte(line + "\r\n")) }

		reply("220 test ESMTP")
		var body strings.Builder
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				reply("250 test")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				received <- body.String()
				return
			default:
				reply("500 unknown " + strconv.Quote(cmd))
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, tr.send(ctx, testMessage()))

	select {
	case body := <-received:
		assert.Contains(t, body, "Subject: Your KalamKart Order Invoice")
		assert.Contains(t, body, "Thanks for shopping")
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw QUIT")
	}
}
