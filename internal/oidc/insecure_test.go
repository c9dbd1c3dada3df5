package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	seg := base64.RawURLEncoding.EncodeToString
	return seg([]byte(`{"alg":"none"}`)) + "." + seg(payload) + "."
}

func TestInsecureVerifier(t *testing.T) {
	v := NewInsecureVerifier()

	raw := fakeIDToken(t, map[string]interface{}{
		"sub": "google-123", "email": "alice@example.com", "name": "Alice",
	})
	c, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "google-123", c.Subject)
	require.Equal(t, "alice@example.com", c.Email)
	require.Equal(t, "Alice", c.Name)

	_, err = v.Verify(context.Background(), "garbage")
	require.Error(t, err)

	_, err = v.Verify(context.Background(), fakeIDToken(t, map[string]interface{}{"sub": "x"}))
	require.Error(t, err)
}
