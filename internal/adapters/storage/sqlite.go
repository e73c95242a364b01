package storage

// sqlite.go — persistencia del ledger en SQLite (pure Go, sin CGo).
//
// Modelo append-only:
//   - `runs`: una fila por run del engine, con el resumen ya calculado y los
//     parámetros de estrategia serializados (YAML) para reproducibilidad.
//   - `trades`: una fila por ClosedTrade, en orden de entrada. Nunca se
//     actualizan: el ledger es inmutable por contrato.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

const schema = `
-- Una fila por run del engine
CREATE TABLE IF NOT EXISTS runs (
    run_id       TEXT PRIMARY KEY,
    symbol       TEXT    NOT NULL,
    started_at   TEXT    NOT NULL,
    fine_bars    INTEGER NOT NULL DEFAULT 0,
    total_trades INTEGER NOT NULL DEFAULT 0,
    net_pips     REAL    NOT NULL DEFAULT 0,
    win_rate     REAL    NOT NULL DEFAULT 0,
    max_drawdown REAL    NOT NULL DEFAULT 0,
    params       TEXT
);

-- Ledger: una fila por trade cerrado, append-only
CREATE TABLE IF NOT EXISTS trades (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT    NOT NULL REFERENCES runs(run_id),
    entry_time   TEXT    NOT NULL,
    exit_time    TEXT    NOT NULL,
    direction    TEXT    NOT NULL,
    entry_price  REAL    NOT NULL,
    exit_price   REAL    NOT NULL,
    stop_price   REAL    NOT NULL,
    target_price REAL    NOT NULL,
    risk_pips    REAL    NOT NULL,
    gross_pips   REAL    NOT NULL,
    net_pips     REAL    NOT NULL,
    bars_held    INTEGER NOT NULL,
    exit_reason  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id, id);
`

// SQLiteStorage implementa ports.Storage usando SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	params config.StrategyConfig // se serializa con cada run
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string, params config.StrategyConfig) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db, params: params}, nil
}

// SaveRun persiste el run y su ledger completo en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result domain.RunResult) error {
	paramsYAML, err := yaml.Marshal(s.params)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: marshal params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(run_id, symbol, started_at, fine_bars, total_trades, net_pips, win_rate, max_drawdown, params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Symbol,
		formatTime(result.StartedAt),
		result.FineBars,
		result.Summary.TotalTrades,
		result.Summary.TotalNetPips,
		result.Summary.WinRate,
		result.Summary.MaxDrawdown,
		string(paramsYAML),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", result.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, entry_time, exit_time, direction, entry_price, exit_price,
			 stop_price, target_price, risk_pips, gross_pips, net_pips,
			 bars_held, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Ledger {
		if _, err := stmt.ExecContext(ctx,
			result.RunID,
			formatTime(t.EntryTime),
			formatTime(t.ExitTime),
			t.Direction.String(),
			t.EntryPrice,
			t.ExitPrice,
			t.StopPrice,
			t.TargetPrice,
			t.RiskPips,
			t.GrossPips,
			t.NetPips,
			t.BarsHeld,
			string(t.ExitReason),
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetTrades devuelve el ledger de un run en orden de inserción.
func (s *SQLiteStorage) GetTrades(ctx context.Context, runID string) ([]domain.ClosedTrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_time, exit_time, direction, entry_price, exit_price,
		       stop_price, target_price, risk_pips, gross_pips, net_pips,
		       bars_held, exit_reason
		FROM trades
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		var entryTime, exitTime, direction, reason string

		if err := rows.Scan(
			&entryTime,
			&exitTime,
			&direction,
			&t.EntryPrice,
			&t.ExitPrice,
			&t.StopPrice,
			&t.TargetPrice,
			&t.RiskPips,
			&t.GrossPips,
			&t.NetPips,
			&t.BarsHeld,
			&reason,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}

		if t.EntryTime, err = parseTime(entryTime); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: %w", err)
		}
		if t.ExitTime, err = parseTime(exitTime); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: %w", err)
		}
		t.Direction = domain.Long
		if direction == "SELL" {
			t.Direction = domain.Short
		}
		t.ExitReason = domain.ExitReason(reason)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetTrades: rows: %w", err)
	}
	return trades, nil
}

// GetRuns devuelve los run IDs iniciados en el rango dado, más recientes
// primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, from, to time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id FROM runs
		WHERE started_at BETWEEN ? AND ?
		ORDER BY started_at DESC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetRuns: rows: %w", err)
	}
	return ids, nil
}

// Close cierra la conexión.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// formatTime serializa timestamps en UTC RFC3339 con nanosegundos, el
// formato que parseTime espera de vuelta. Comparable lexicográficamente.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
