package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

var t0 = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

func fineBar(minute int, o, h, l, c, v float64) domain.Bar {
	return domain.Bar{
		Time: t0.Add(time.Duration(minute) * time.Minute),
		Open: o, High: h, Low: l, Close: c, Volume: v,
	}
}

func TestAggregate_OHLCV(t *testing.T) {
	fine := []domain.Bar{
		fineBar(0, 1.0800, 1.0805, 1.0798, 1.0803, 100),
		fineBar(1, 1.0803, 1.0810, 1.0801, 1.0808, 150),
		fineBar(5, 1.0808, 1.0809, 1.0790, 1.0795, 200),
		fineBar(14, 1.0795, 1.0799, 1.0793, 1.0797, 50),
		fineBar(15, 1.0797, 1.0801, 1.0796, 1.0800, 80),
		fineBar(16, 1.0800, 1.0804, 1.0799, 1.0802, 70),
	}

	coarse, err := Aggregate(fine, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, coarse, 2)

	// Bucket [08:00, 08:15): first open, max high, min low, last close, sum volume
	b := coarse[0]
	assert.Equal(t, t0, b.Time)
	assert.Equal(t, 1.0800, b.Open)
	assert.Equal(t, 1.0810, b.High)
	assert.Equal(t, 1.0790, b.Low)
	assert.Equal(t, 1.0797, b.Close)
	assert.Equal(t, 500.0, b.Volume)

	// Bucket [08:15, 08:30)
	b = coarse[1]
	assert.Equal(t, t0.Add(15*time.Minute), b.Time)
	assert.Equal(t, 1.0797, b.Open)
	assert.Equal(t, 1.0802, b.Close)
	assert.Equal(t, 150.0, b.Volume)
}

func TestAggregate_GapBucketsNotBackfilled(t *testing.T) {
	// Barras en los buckets 08:00 y 08:30 — el bucket 08:15 no recibió datos
	// y no debe aparecer como barra sintética.
	fine := []domain.Bar{
		fineBar(0, 1.08, 1.081, 1.079, 1.080, 10),
		fineBar(1, 1.08, 1.081, 1.079, 1.080, 10),
		fineBar(40, 1.09, 1.091, 1.089, 1.090, 10),
	}

	coarse, err := Aggregate(fine, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, coarse, 2)
	assert.Equal(t, t0, coarse[0].Time)
	assert.Equal(t, t0.Add(30*time.Minute), coarse[1].Time)
}

func TestAggregate_Empty(t *testing.T) {
	coarse, err := Aggregate(nil, 15*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, coarse)
}

func TestAggregate_NonMonotonic(t *testing.T) {
	fine := []domain.Bar{
		fineBar(5, 1.08, 1.081, 1.079, 1.080, 10),
		fineBar(3, 1.08, 1.081, 1.079, 1.080, 10),
	}
	_, err := Aggregate(fine, 15*time.Minute)
	assert.ErrorIs(t, err, domain.ErrNonMonotonic)
}

func TestAggregate_DuplicateTimestamp(t *testing.T) {
	fine := []domain.Bar{
		fineBar(5, 1.08, 1.081, 1.079, 1.080, 10),
		fineBar(5, 1.08, 1.081, 1.079, 1.080, 10),
	}
	_, err := Aggregate(fine, 15*time.Minute)
	assert.ErrorIs(t, err, domain.ErrNonMonotonic)
}

func TestNew_InvalidBucket(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}

func TestAppend_EmitsOnlyWhenBucketCloses(t *testing.T) {
	agg, err := New(15 * time.Minute)
	require.NoError(t, err)

	// Todas las barras del bucket [08:00, 08:15): ninguna emisión
	for m := 0; m < 15; m++ {
		_, ok, err := agg.Append(fineBar(m, 1.08, 1.081, 1.079, 1.080, 1))
		require.NoError(t, err)
		assert.False(t, ok, "minute %d must not close the bucket", m)
	}

	// La primera barra fuera de la ventana cierra el bucket — exactamente una vez
	closed, ok, err := agg.Append(fineBar(15, 1.08, 1.081, 1.079, 1.080, 1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, t0, closed.Time)
	assert.Equal(t, 15.0, closed.Volume)
}

func TestFlush(t *testing.T) {
	agg, err := New(15 * time.Minute)
	require.NoError(t, err)

	_, ok, err := agg.Append(fineBar(0, 1.08, 1.081, 1.079, 1.080, 1))
	require.NoError(t, err)
	require.False(t, ok)

	closed, ok := agg.Flush()
	require.True(t, ok)
	assert.Equal(t, t0, closed.Time)

	_, ok = agg.Flush()
	assert.False(t, ok, "second flush must be a no-op")
}

// TestAppend_MatchesBatch comprueba la idempotencia de replay: la misma
// serie fina por la interfaz incremental y por la batch produce la misma
// serie coarse.
func TestAppend_MatchesBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var fine []domain.Bar
	minute := 0
	price := 1.0800
	for i := 0; i < 500; i++ {
		// Huecos ocasionales en la serie fuente
		minute += 1 + rng.Intn(4)
		open := price
		price += (rng.Float64() - 0.5) * 0.0010
		closePx := price
		high := max(open, closePx) + rng.Float64()*0.0005
		low := min(open, closePx) - rng.Float64()*0.0005
		fine = append(fine, fineBar(minute, open, high, low, closePx, float64(rng.Intn(500))))
	}

	batch, err := Aggregate(fine, 15*time.Minute)
	require.NoError(t, err)

	agg, err := New(15 * time.Minute)
	require.NoError(t, err)

	var incremental []domain.Bar
	for _, b := range fine {
		closed, ok, err := agg.Append(b)
		require.NoError(t, err)
		if ok {
			incremental = append(incremental, closed)
		}
	}
	if closed, ok := agg.Flush(); ok {
		incremental = append(incremental, closed)
	}

	assert.Equal(t, batch, incremental)
}
