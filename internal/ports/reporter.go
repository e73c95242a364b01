package ports

import (
	"context"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Reporter presenta el resultado de un run al usuario.
type Reporter interface {
	// Report muestra el ledger y el resumen de rendimiento.
	// En la implementación de consola, imprime tablas formateadas.
	Report(ctx context.Context, result domain.RunResult) error
}
