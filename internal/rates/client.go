package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/config"
	"github.com/FinBoard/finboard-gateway/internal/currency"
	"go.uber.org/zap"
)

// Client talks to the external exchange-rate service. It implements
// currency.RateSource. With fake_rates enabled it serves a deterministic
// in-process table instead, for development without the real service.
type Client struct {
	log  *zap.Logger
	http *http.Client

	mu   sync.RWMutex
	base string
	fake bool
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		log:  log,
		http: &http.Client{Timeout: time.Duration(cfg.Rates.TimeoutSecs) * time.Second},
		base: cfg.Rates.URL,
		fake: cfg.Rates.Fake,
	}
}

func (c *Client) Rate(ctx context.Context, from, to currency.Code) (float64, error) {
	c.mu.RLock()
	base, fake := c.base, c.fake
	c.mu.RUnlock()

	if fake {
		return fakeRate(from, to)
	}

	u := fmt.Sprintf("%s/v1/rate?from=%s&to=%s",
		base, url.QueryEscape(string(from)), url.QueryEscape(string(to)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("rate lookup failed", zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate service returned %s", resp.Status)
	}
	var body struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if body.Rate <= 0 {
		return 0, fmt.Errorf("rate service returned non-positive rate %v", body.Rate)
	}
	return body.Rate, nil
}

func (c *Client) Reload(cfg *config.Config) {
	c.mu.Lock()
	c.base = cfg.Rates.URL
	c.fake = cfg.Rates.Fake
	c.mu.Unlock()
}

// usdValue holds the USD value of one unit of each supported currency,
// used only by the fake table.
var usdValue = map[currency.Code]float64{
	currency.USD: 1,
	currency.EUR: 1.09,
	currency.GBP: 1.27,
	currency.JPY: 0.0067,
	currency.CHF: 1.13,
	currency.CAD: 0.73,
	currency.AUD: 0.65,
	currency.CNY: 0.14,
	currency.INR: 0.012,
	currency.NGN: 0.00065,
}

func fakeRate(from, to currency.Code) (float64, error) {
	f, ok := usdValue[from]
	if !ok {
		return 0, fmt.Errorf("no fake rate for %q", from)
	}
	t, ok := usdValue[to]
	if !ok {
		return 0, fmt.Errorf("no fake rate for %q", to)
	}
	return f / t, nil
}
