package ports

import (
	"context"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// BarSource entrega barras finas en orden estricto de timestamp.
// El engine no sabe ni le importa si la siguiente barra viene de un buffer
// histórico finito o de un feed en vivo: ambos implementan este puerto.
type BarSource interface {
	// Next devuelve la siguiente barra. ok=false señala el fin del stream
	// (fuente histórica agotada o feed cerrado); en vivo, Next bloquea
	// hasta que cierre la siguiente barra o se cancele el contexto.
	Next(ctx context.Context) (bar domain.Bar, ok bool, err error)
}
