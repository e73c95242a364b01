package aggregate

// aggregate.go — plegado de barras finas en barras de timeframe superior.
//
// La interfaz incremental (Append) es la fuente de verdad: emite cada barra
// coarse exactamente una vez, en el instante en que la siguiente barra fina
// cae fuera del bucket actual — nunca por reloj de pared. La versión batch
// (Aggregate) se construye sobre Append, así replay y batch producen la
// misma serie por construcción.

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Aggregator pliega una secuencia de barras finas en buckets de ancho fijo
// alineados por timestamp. Un bucket sin barras fuente no aparece en la
// serie: los huecos no se rellenan con barras sintéticas.
type Aggregator struct {
	bucket   time.Duration
	current  *domain.Bar // barra coarse en formación, nil si no hay bucket abierto
	start    time.Time   // inicio del bucket actual
	lastFine time.Time   // timestamp de la última barra fina aceptada
}

// New crea un agregador con el ancho de bucket dado.
func New(bucket time.Duration) (*Aggregator, error) {
	if bucket <= 0 {
		return nil, fmt.Errorf("aggregate.New: bucket must be > 0, got %v", bucket)
	}
	return &Aggregator{bucket: bucket}, nil
}

// Append incorpora una barra fina. Si su timestamp cae fuera del bucket en
// formación, devuelve la barra coarse completada (ok=true) y abre el bucket
// nuevo. Una barra coarse cerrada nunca se revisa retroactivamente.
func (a *Aggregator) Append(fine domain.Bar) (closed domain.Bar, ok bool, err error) {
	if !a.lastFine.IsZero() && !fine.Time.After(a.lastFine) {
		return domain.Bar{}, false, fmt.Errorf(
			"aggregate.Append: bar at %s after %s: %w",
			fine.Time.Format(time.RFC3339), a.lastFine.Format(time.RFC3339),
			domain.ErrNonMonotonic,
		)
	}
	a.lastFine = fine.Time

	bucketStart := fine.Time.Truncate(a.bucket)

	if a.current != nil && !bucketStart.Equal(a.start) {
		closed, ok = *a.current, true
		a.current = nil
	}

	if a.current == nil {
		a.start = bucketStart
		a.current = &domain.Bar{
			Time:   bucketStart,
			Open:   fine.Open,
			High:   fine.High,
			Low:    fine.Low,
			Close:  fine.Close,
			Volume: fine.Volume,
		}
		return closed, ok, nil
	}

	if fine.High > a.current.High {
		a.current.High = fine.High
	}
	if fine.Low < a.current.Low {
		a.current.Low = fine.Low
	}
	a.current.Close = fine.Close
	a.current.Volume += fine.Volume
	return closed, ok, nil
}

// Flush cierra y devuelve el bucket en formación, si existe. Solo debe
// usarse al agotar una fuente finita: en vivo el bucket sigue abierto hasta
// que llegue una barra fuera de su ventana.
func (a *Aggregator) Flush() (domain.Bar, bool) {
	if a.current == nil {
		return domain.Bar{}, false
	}
	closed := *a.current
	a.current = nil
	return closed, true
}

// Aggregate pliega una serie fina completa en su serie coarse. Función pura
// sobre una entrada finita; falla con ErrNonMonotonic si los timestamps no
// son estrictamente crecientes.
func Aggregate(fine []domain.Bar, bucket time.Duration) ([]domain.Bar, error) {
	agg, err := New(bucket)
	if err != nil {
		return nil, err
	}

	var coarse []domain.Bar
	for _, b := range fine {
		closed, ok, err := agg.Append(b)
		if err != nil {
			return nil, err
		}
		if ok {
			coarse = append(coarse, closed)
		}
	}
	if closed, ok := agg.Flush(); ok {
		coarse = append(coarse, closed)
	}
	return coarse, nil
}
