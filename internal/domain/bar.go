package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNonMonotonic indica que una secuencia de barras no avanza en el tiempo.
// Una secuencia corrupta invalida todo el estado posterior: se falla rápido
// y no se intenta recuperación parcial a mitad de run.
var ErrNonMonotonic = errors.New("non-monotonic bar timestamps")

// ErrMalformedBar indica una barra con campos inconsistentes o no numéricos.
var ErrMalformedBar = errors.New("malformed bar")

// Bar es una muestra OHLCV inmutable para un periodo fijo.
// La crea la capa de ingestión y nunca se muta después.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsUp devuelve true si la barra cerró por encima de su apertura.
func (b Bar) IsUp() bool {
	return b.Close > b.Open
}

// IsDown devuelve true si la barra cerró por debajo de su apertura.
func (b Bar) IsDown() bool {
	return b.Close < b.Open
}

// Validate comprueba la consistencia interna de la barra:
// precios positivos, low ≤ open,close ≤ high y volumen no negativo.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrMalformedBar)
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("%w: non-positive price at %s", ErrMalformedBar, b.Time.Format(time.RFC3339))
	}
	if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("%w: OHLC out of range at %s", ErrMalformedBar, b.Time.Format(time.RFC3339))
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: negative volume at %s", ErrMalformedBar, b.Time.Format(time.RFC3339))
	}
	return nil
}
