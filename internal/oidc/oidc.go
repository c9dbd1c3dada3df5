package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleIssuer is the OIDC issuer for Google sign-in.
const GoogleIssuer = "https://accounts.google.com"

// Claims are the identity fields the account flow needs from an ID token.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// TokenVerifier validates a raw ID token and extracts its claims.
// It is satisfied by *Verifier and by test fakes.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// NewGoogleVerifier creates a verifier against Google's issuer.
func NewGoogleVerifier(ctx context.Context, clientID string) (*Verifier, error) {
	return NewVerifier(ctx, GoogleIssuer, clientID)
}

// Verify validates the raw ID token signature and audience and returns its claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var c Claims
	if err := idToken.Claims(&c); err != nil {
		return nil, err
	}
	if c.Subject == "" || c.Email == "" {
		return nil, fmt.Errorf("id token missing subject or email")
	}
	return &c, nil
}
