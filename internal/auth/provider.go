package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized means the provider rejected the credentials or token.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrProviderUnavailable means the provider could not be reached or
	// answered with a server error. No retries happen here.
	ErrProviderUnavailable = errors.New("auth: provider unavailable")
)

// Credentials are forwarded verbatim to the external auth provider.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is what the provider returns on a successful sign-in or
// sign-up.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

// Provider is the HTTP boundary to the external auth service.
type Provider struct {
	log  *zap.Logger
	http *http.Client

	mu   sync.RWMutex
	base string
}

func NewProvider(cfg *config.Config, log *zap.Logger) *Provider {
	return &Provider{
		log:  log,
		http: &http.Client{Timeout: time.Duration(cfg.Auth.TimeoutSecs) * time.Second},
		base: cfg.Auth.ProviderURL,
	}
}

func (p *Provider) Reload(cfg *config.Config) {
	p.mu.Lock()
	p.base = cfg.Auth.ProviderURL
	p.mu.Unlock()
}

func (p *Provider) SignIn(ctx context.Context, creds Credentials) (Identity, error) {
	return p.identityCall(ctx, "/v1/signin", creds)
}

func (p *Provider) SignUp(ctx context.Context, creds Credentials) (Identity, error) {
	return p.identityCall(ctx, "/v1/signup", creds)
}

// VerifyToken checks a one-time token (email verification, password
// reset) against the provider. The purpose scopes the token to one flow.
func (p *Provider) VerifyToken(ctx context.Context, token, purpose string) error {
	body := map[string]string{"token": token, "purpose": purpose}
	resp, err := p.post(ctx, "/v1/verify", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return p.checkStatus(resp)
}

func (p *Provider) identityCall(ctx context.Context, path string, creds Credentials) (Identity, error) {
	resp, err := p.post(ctx, path, creds)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()
	if err := p.checkStatus(resp); err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if id.Subject == "" {
		return Identity{}, fmt.Errorf("%w: empty subject", ErrProviderUnavailable)
	}
	return id, nil
}

func (p *Provider) post(ctx context.Context, path string, body any) (*http.Response, error) {
	p.mu.RLock()
	base := p.base
	p.mu.RUnlock()

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.http.Do(req)
	if err != nil {
		p.log.Warn("auth provider call failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return resp, nil
}

func (p *Provider) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: status %s", ErrProviderUnavailable, resp.Status)
	}
}
