package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessions_MintVerify(t *testing.T) {
	s, err := NewSessions("super-secret", "finboard-gateway", "finboard-ui", time.Hour)
	require.NoError(t, err)

	tok, err := s.Mint("user-42")
	require.NoError(t, err)

	sub, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestSessions_RejectsForeignToken(t *testing.T) {
	a, err := NewSessions("secret-a", "finboard-gateway", "", time.Hour)
	require.NoError(t, err)
	b, err := NewSessions("secret-b", "finboard-gateway", "", time.Hour)
	require.NoError(t, err)

	tok, err := a.Mint("user-42")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.Error(t, err)
}

func TestSessions_RejectsExpired(t *testing.T) {
	s, err := NewSessions("super-secret", "finboard-gateway", "", -time.Minute)
	require.NoError(t, err)

	tok, err := s.Mint("user-42")
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.Error(t, err)
}

func TestSessions_RejectsIssuerMismatch(t *testing.T) {
	a, err := NewSessions("super-secret", "someone-else", "", time.Hour)
	require.NoError(t, err)
	b, err := NewSessions("super-secret", "finboard-gateway", "", time.Hour)
	require.NoError(t, err)

	tok, err := a.Mint("user-42")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.Error(t, err)
}

func TestSessions_EmptySecret(t *testing.T) {
	_, err := NewSessions("", "iss", "", time.Hour)
	assert.Error(t, err)
}

func newProvider(t *testing.T, base string) *Provider {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.ProviderURL = base
	cfg.Auth.TimeoutSecs = 2
	return NewProvider(cfg, zap.NewNop())
}

func TestProvider_SignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/signin", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"subject":"user-42","email":"a@b.c"}`))
	}))
	defer srv.Close()

	id, err := newProvider(t, srv.URL).SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.Subject)
}

func TestProvider_SignInRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newProvider(t, srv.URL).SignIn(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProvider_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newProvider(t, srv.URL).SignUp(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestProvider_VerifyToken(t *testing.T) {
	var gotPurpose string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/verify", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPurpose = body["purpose"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newProvider(t, srv.URL).VerifyToken(context.Background(), "tok-1", "email-verification")
	require.NoError(t, err)
	assert.Equal(t, "email-verification", gotPurpose)
}
