// Package payment talks to the payment gateways.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kalamkart/pkg/utils"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	// ErrVerificationFailed means the gateway answered but did not confirm the payment.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrUnavailable means the gateway could not be reached or the breaker is open.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// SimulatedToken skips the gateway when simulation is enabled.
const SimulatedToken = "test_local"

type Verification struct {
	IDX    string `json:"idx"`
	Amount int64  `json:"amount"`
}

type KhaltiVerifier interface {
	Verify(ctx context.Context, token string, amount int64) (*Verification, error)
}

type KhaltiClient struct {
	verifyURL string
	secretKey string
	simulate  bool
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	log       *zap.Logger
}

func NewKhaltiClient(config utils.PaymentConfig, log *zap.Logger) *KhaltiClient {
	log = log.With(zap.String("component", "khalti"))

	var st gobreaker.Settings
	st.Name = "khalti"
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

	return &KhaltiClient{
		verifyURL: config.KhaltiVerifyURL,
		secretKey: config.KhaltiSecretKey,
		simulate:  config.KhaltiSimulate,
		client:    &http.Client{Timeout: 10 * time.Second},
		breaker:   gobreaker.NewCircuitBreaker[[]byte](st),
		log:       log,
	}
}

func (c *KhaltiClient) Verify(ctx context.Context, token string, amount int64) (*Verification, error) {
	if c.simulate && token == SimulatedToken {
		c.log.Info("Khalti verification simulated", zap.Int64("amount", amount))
		return &Verification{IDX: "simulated", Amount: amount}, nil
	}

	payload, err := json.Marshal(map[string]any{"token": token, "amount": amount})
	if err != nil {
		return nil, fmt.Errorf("encode verification request: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		c.log.Error("Khalti verification request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var result Verification
	if err := json.Unmarshal(body, &result); err != nil || result.IDX == "" {
		c.log.Warn("Khalti did not confirm payment", zap.ByteString("response", body))
		return nil, ErrVerificationFailed
	}
	return &result, nil
}

// post returns the body of any non-5xx answer; only transport and server errors count against the breaker.
func (c *KhaltiClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return body, nil
}
