package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Storage persiste los runs del engine y su ledger de trades.
type Storage interface {
	// SaveRun persiste el run completo: fila de run + una fila por trade.
	SaveRun(ctx context.Context, result domain.RunResult) error

	// GetTrades devuelve el ledger persistido de un run, en orden de entrada.
	GetTrades(ctx context.Context, runID string) ([]domain.ClosedTrade, error)

	// GetRuns devuelve los IDs de runs registrados en el rango de tiempo dado.
	GetRuns(ctx context.Context, from, to time.Time) ([]string, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
