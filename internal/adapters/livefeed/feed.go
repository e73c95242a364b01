package livefeed

// feed.go — ports.BarSource sobre el feed en vivo.
//
// El engine comparte el mismo loop de decisión que en backtest; aquí solo
// cambia cómo se obtiene la siguiente barra: Next bloquea haciendo poll
// hasta que el broker publica una vela cerrada nueva. El engine se invoca
// una vez por barra y completa antes del siguiente poll — no hay
// invocaciones concurrentes.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// fetchBatch es cuántas velas se piden por poll: suficientes para cubrir
// pausas cortas del feed sin perder barras.
const fetchBatch = 10

// candleFetcher abstrae al Client para poder testear el feed sin HTTP.
type candleFetcher interface {
	FetchCandles(ctx context.Context, symbol string, count int) ([]domain.Bar, error)
}

// Feed implementa ports.BarSource haciendo poll del broker.
type Feed struct {
	client   candleFetcher
	symbol   string
	interval time.Duration
	lastSeen time.Time
	pending  []domain.Bar // velas recibidas aún no entregadas
}

// New crea un feed en vivo para el símbolo dado.
func New(client *Client, symbol string, pollInterval time.Duration) *Feed {
	return newFeed(client, symbol, pollInterval)
}

func newFeed(client candleFetcher, symbol string, pollInterval time.Duration) *Feed {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Feed{client: client, symbol: symbol, interval: pollInterval}
}

// Next bloquea hasta que haya una vela cerrada posterior a la última
// entregada, o hasta que se cancele el contexto (ok=false, fin del stream).
func (f *Feed) Next(ctx context.Context) (domain.Bar, bool, error) {
	for {
		if len(f.pending) > 0 {
			bar := f.pending[0]
			f.pending = f.pending[1:]
			f.lastSeen = bar.Time
			return bar, true, nil
		}

		if err := f.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return domain.Bar{}, false, nil
			}
			return domain.Bar{}, false, fmt.Errorf("livefeed.Next: %w", err)
		}
		if len(f.pending) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return domain.Bar{}, false, nil
		case <-time.After(f.interval):
		}
	}
}

// poll pide el último batch de velas y encola las estrictamente posteriores
// a la última entregada, validándolas en la frontera.
func (f *Feed) poll(ctx context.Context) error {
	bars, err := f.client.FetchCandles(ctx, f.symbol, fetchBatch)
	if err != nil {
		return err
	}

	for _, b := range bars {
		if !f.lastSeen.IsZero() && !b.Time.After(f.lastSeen) {
			continue
		}
		if len(f.pending) > 0 && !b.Time.After(f.pending[len(f.pending)-1].Time) {
			continue
		}
		if err := b.Validate(); err != nil {
			slog.Warn("dropping malformed candle from feed", "err", err)
			continue
		}
		f.pending = append(f.pending, b)
	}
	return nil
}
