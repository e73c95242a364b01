package livefeed

// client.go — HTTP client del feed de velas del broker, con rate limiting
// y retries.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

const (
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// candle es el formato de vela que devuelve la API del broker.
type candle struct {
	Time   int64   `json:"time"` // epoch segundos, inicio de la vela
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Client consulta velas cerradas al broker.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client con el base URL dado y el límite de requests/s.
func NewClient(base string, ratePerSec float64) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 5),
	}
}

// FetchCandles devuelve las últimas `count` velas M1 cerradas del símbolo,
// en orden ascendente de tiempo.
func (c *Client) FetchCandles(ctx context.Context, symbol string, count int) ([]domain.Bar, error) {
	url := fmt.Sprintf("%s/candles?symbol=%s&tf=1m&limit=%d", c.base, symbol, count)

	var raw []candle
	if err := c.get(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("livefeed.FetchCandles: %w", err)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, k := range raw {
		bars = append(bars, domain.Bar{
			Time:   time.Unix(k.Time, 0).UTC(),
			Open:   k.Open,
			High:   k.High,
			Low:    k.Low,
			Close:  k.Close,
			Volume: k.Volume,
		})
	}
	return bars, nil
}

// get hace un GET JSON con rate limiting y backoff exponencial con jitter.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			slog.Warn("feed API unavailable, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			if attempt == maxRetries {
				return fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
		}
		return json.Unmarshal(body, out)
	}
	return nil
}

// sleep espera con backoff exponencial y jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(float64(baseRetryWait) * math.Pow(2, float64(attempt)))
	wait += time.Duration(rand.Int63n(int64(baseRetryWait)))
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
