package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func verifierReturning(payload *idtoken.Payload, err error) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: "client-123",
		validate: func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
			if audience != "client-123" {
				return nil, errors.New("audience mismatch")
			}
			return payload, err
		},
	}
}

func TestGoogleVerifier_ExtractsIdentity(t *testing.T) {
	v := verifierReturning(&idtoken.Payload{
		Subject: "1098",
		Claims: map[string]interface{}{
			"email":          "ram@example.com",
			"email_verified": true,
			"name":           "Ram Thapa",
		},
	}, nil)

	id, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "1098", id.Subject)
	assert.Equal(t, "ram@example.com", id.Email)
	assert.Equal(t, "Ram Thapa", id.Name)
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload *idtoken.Payload
		err     error
	}{
		{name: "validation error", err: errors.New("token expired")},
		{name: "missing email", payload: &idtoken.Payload{Claims: map[string]interface{}{}}},
		{name: "unverified email", payload: &idtoken.Payload{Claims: map[string]interface{}{
			"email":          "x@example.com",
			"email_verified": false,
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifierReturning(tt.payload, tt.err).Verify(context.Background(), "token")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGoogleVerifier_NotConfigured(t *testing.T) {
	_, err := NewGoogleVerifier("").Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
