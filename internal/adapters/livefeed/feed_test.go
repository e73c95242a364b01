package livefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

func testCandle(minute int) domain.Bar {
	return domain.Bar{
		Time: time.Date(2024, 3, 4, 8, minute, 0, 0, time.UTC),
		Open: 1.08, High: 1.081, Low: 1.079, Close: 1.080, Volume: 10,
	}
}

// stubFetcher devuelve batches preparados, repitiendo el último cuando se
// agotan — como un broker que aún no publicó vela nueva.
type stubFetcher struct {
	batches [][]domain.Bar
	calls   int
}

func (s *stubFetcher) FetchCandles(_ context.Context, _ string, _ int) ([]domain.Bar, error) {
	i := s.calls
	if i >= len(s.batches) {
		i = len(s.batches) - 1
	}
	s.calls++
	return s.batches[i], nil
}

func TestNext_DeliversInOrder(t *testing.T) {
	fetcher := &stubFetcher{batches: [][]domain.Bar{
		{testCandle(0), testCandle(1)},
	}}
	feed := newFeed(fetcher, "EURUSD", time.Millisecond)

	ctx := context.Background()
	b1, ok, err := feed.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testCandle(0).Time, b1.Time)

	b2, ok, err := feed.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testCandle(1).Time, b2.Time)
}

func TestNext_SkipsAlreadySeenCandles(t *testing.T) {
	// El segundo poll repite la vela 1 y añade la 2: solo la nueva se entrega
	fetcher := &stubFetcher{batches: [][]domain.Bar{
		{testCandle(0), testCandle(1)},
		{testCandle(1), testCandle(2)},
	}}
	feed := newFeed(fetcher, "EURUSD", time.Millisecond)

	ctx := context.Background()
	var seen []time.Time
	for i := 0; i < 3; i++ {
		b, ok, err := feed.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		seen = append(seen, b.Time)
	}

	assert.Equal(t, []time.Time{testCandle(0).Time, testCandle(1).Time, testCandle(2).Time}, seen)
}

func TestNext_DropsMalformedCandles(t *testing.T) {
	bad := testCandle(1)
	bad.High, bad.Low = bad.Low, bad.High // high < low

	fetcher := &stubFetcher{batches: [][]domain.Bar{
		{testCandle(0), bad, testCandle(2)},
	}}
	feed := newFeed(fetcher, "EURUSD", time.Millisecond)

	ctx := context.Background()
	b1, _, err := feed.Next(ctx)
	require.NoError(t, err)
	b2, _, err := feed.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, testCandle(0).Time, b1.Time)
	assert.Equal(t, testCandle(2).Time, b2.Time) // la malformada no llega al engine
}

func TestNext_CancelEndsStream(t *testing.T) {
	// Sin velas nuevas el feed queda en espera; cancelar termina el stream
	// con ok=false, sin error.
	fetcher := &stubFetcher{batches: [][]domain.Bar{{testCandle(0)}}}
	feed := newFeed(fetcher, "EURUSD", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	_, ok, err := feed.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	cancel()
	_, ok, err = feed.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewFeed_DefaultInterval(t *testing.T) {
	feed := newFeed(&stubFetcher{batches: [][]domain.Bar{nil}}, "EURUSD", 0)
	assert.Equal(t, time.Second, feed.interval)
}
