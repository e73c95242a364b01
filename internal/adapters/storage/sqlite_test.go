package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "fxbot_test.db"), config.StrategyConfig{
		RiskRewardRatio: 10,
		MaxBarsPerTrade: 100,
		AllowedHours:    []int{8, 9},
		CoarseMinutes:   15,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(startedAt time.Time) domain.RunResult {
	entry := time.Date(2024, 3, 4, 8, 32, 0, 0, time.UTC)
	ledger := []domain.ClosedTrade{
		{
			EntryTime:   entry,
			ExitTime:    entry.Add(time.Minute),
			Direction:   domain.Long,
			EntryPrice:  1.07953,
			ExitPrice:   1.079305,
			StopPrice:   1.079305,
			TargetPrice: 1.08178,
			RiskPips:    2.25,
			GrossPips:   -2.25,
			NetPips:     -2.60,
			BarsHeld:    1,
			ExitReason:  domain.ExitStop,
		},
		{
			EntryTime:   entry.Add(10 * time.Minute),
			ExitTime:    entry.Add(25 * time.Minute),
			Direction:   domain.Short,
			EntryPrice:  1.08100,
			ExitPrice:   1.07900,
			StopPrice:   1.08150,
			TargetPrice: 1.07900,
			RiskPips:    5.0,
			GrossPips:   20.0,
			NetPips:     19.65,
			BarsHeld:    15,
			ExitReason:  domain.ExitTarget,
		},
	}

	return domain.RunResult{
		RunID:     uuid.New().String(),
		Symbol:    "EURUSD",
		StartedAt: startedAt,
		Ledger:    ledger,
		Summary: domain.Summary{
			TotalTrades:  2,
			Wins:         1,
			Losses:       1,
			WinRate:      50,
			TotalNetPips: 17.05,
			MaxDrawdown:  -2.60,
		},
		FineBars: 480,
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	result := testResult(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, result))

	trades, err := s.GetTrades(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// El orden de inserción se preserva y cada campo sobrevive el viaje
	assert.Equal(t, result.Ledger[0], trades[0])
	assert.Equal(t, result.Ledger[1], trades[1])
	assert.Equal(t, domain.Short, trades[1].Direction)
	assert.Equal(t, domain.ExitTarget, trades[1].ExitReason)
}

func TestSaveRun_EmptyLedger(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	result := testResult(time.Now().UTC())
	result.Ledger = nil
	result.Summary = domain.Summary{}
	require.NoError(t, s.SaveRun(ctx, result))

	trades, err := s.GetTrades(ctx, result.RunID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSaveRun_DuplicateRunIDRejected(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	result := testResult(time.Now().UTC())
	require.NoError(t, s.SaveRun(ctx, result))
	assert.Error(t, s.SaveRun(ctx, result)) // run_id es primary key
}

func TestGetRuns_DateRange(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	old := testResult(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := testResult(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, old))
	require.NoError(t, s.SaveRun(ctx, recent))

	ids, err := s.GetRuns(ctx,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, recent.RunID, ids[0])

	all, err := s.GetRuns(ctx,
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, recent.RunID, all[0]) // más recientes primero
}

func TestGetTrades_UnknownRun(t *testing.T) {
	s := testStorage(t)

	trades, err := s.GetTrades(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, trades)
}
