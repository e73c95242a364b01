package ports

import (
	"context"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Executor es la frontera con la ejecución en vivo. El core emite la señal
// aceptada y el colaborador es responsable de enviar la orden al broker y
// de reportar el fill real; el core no modela slippage más allá del coste
// fijo configurado.
type Executor interface {
	// Submit envía la orden correspondiente a una señal aceptada.
	Submit(ctx context.Context, signal domain.Signal) error

	// Exit notifica el cierre de la posición al colaborador.
	Exit(ctx context.Context, trade domain.ClosedTrade) error
}
