package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

func sampleResult() domain.RunResult {
	entry := time.Date(2024, 3, 4, 8, 32, 0, 0, time.UTC)
	return domain.RunResult{
		RunID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		Symbol:    "EURUSD",
		StartedAt: entry,
		Ledger: []domain.ClosedTrade{
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
		},
		Summary: domain.Summary{
			TotalTrades:  1,
			Losses:       1,
			TotalNetPips: -2.60,
			AvgLossPips:  2.60,
			MaxDrawdown:  -2.60,
			StopTrades:   1,
			AvgBarsHeld:  1,
		},
		FineBars: 6,
	}
}

func TestReport_Summary(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleWriter(&buf, false)

	require.NoError(t, reporter.Report(context.Background(), sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "PERFORMANCE SUMMARY — EURUSD")
	assert.Contains(t, out, "Total Trades:        1")
	assert.Contains(t, out, "Total Net Pips:      -2.60p")
	assert.Contains(t, out, "Max Drawdown:        -2.60p")
	assert.NotContains(t, out, "Entry px") // sin -table no hay ledger
}

func TestReport_Table(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleWriter(&buf, true)

	require.NoError(t, reporter.Report(context.Background(), sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "0f8fad5b") // run id truncado en el encabezado
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SL")
	assert.Contains(t, out, "1.07953")
	assert.Contains(t, out, "PERFORMANCE SUMMARY")
}

func TestReport_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleWriter(&buf, true)

	result := sampleResult()
	result.Ledger = nil
	result.Summary = domain.Summary{}

	require.NoError(t, reporter.Report(context.Background(), result))
	assert.Contains(t, buf.String(), "no trades executed")
	assert.NotContains(t, buf.String(), "PERFORMANCE SUMMARY")
}

func TestPaperExecutor(t *testing.T) {
	var buf bytes.Buffer
	ex := NewPaperExecutorWriter(&buf)

	entry := time.Date(2024, 3, 4, 8, 32, 0, 0, time.UTC)
	sig := domain.Signal{
		Direction:   domain.Long,
		EntryTime:   entry,
		EntryPrice:  1.07953,
		StopPrice:   1.079305,
		TargetPrice: 1.08178,
		RiskPips:    2.25,
	}
	require.NoError(t, ex.Submit(context.Background(), sig))

	trade := sampleResult().Ledger[0]
	require.NoError(t, ex.Exit(context.Background(), trade))

	out := buf.String()
	assert.Contains(t, out, "ORDER  BUY @ 1.07953")
	assert.Contains(t, out, "CLOSE  SL BUY @ 1.0793")
	assert.Contains(t, out, "-2.60p")
}
