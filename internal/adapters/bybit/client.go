package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase     = "https://api.bybit.com"
	defaultCategory = "linear"

	// Rate limit al 60% del límite público documentado.
	// /v5/market/*: 600/5s por IP → 360/5s → 72/s
	marketRatePerSec = 72

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de la API pública v5 de Bybit con rate limiting y retries.
type Client struct {
	http     *http.Client
	base     string
	category string
	limiter  *rate.Limiter
}

// NewClient crea un Client contra base (producción si está vacío).
// category es el tipo de producto de Bybit ("linear", "spot", "inverse").
func NewClient(base, category string) *Client {
	if base == "" {
		base = defaultBase
	}
	if category == "" {
		category = defaultCategory
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		base:     base,
		category: category,
		limiter:  rate.NewLimiter(marketRatePerSec, 10),
	}
}

// envelope es la respuesta común de la API v5.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// get hace un GET con rate limiting y retries y decodifica result en out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	var env envelope
	err := c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, &env)
	if err != nil {
		return err
	}
	if env.RetCode != 0 {
		return fmt.Errorf("api error %d: %s", env.RetCode, env.RetMsg)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
