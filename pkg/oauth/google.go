// Package oauth verifies third-party identity tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidToken  = errors.New("invalid identity token")
	ErrNotConfigured = errors.New("google sign-in is not configured")
)

type Identity struct {
	Subject string
	Email   string
	Name    string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify checks the ID token signature, expiry and audience and extracts the profile claims.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrInvalidToken)
	}

	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	name, _ := payload.Claims["name"].(string)

	return &Identity{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
	}, nil
}
