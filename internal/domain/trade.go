package domain

import "time"

// ExitReason es la condición que cerró una posición.
type ExitReason string

const (
	ExitStop    ExitReason = "SL"      // el low/high de la barra alcanzó el stop
	ExitTarget  ExitReason = "TP"      // el high/low de la barra alcanzó el target
	ExitTimeout ExitReason = "TIMEOUT" // máximo de barras en posición sin tocar SL ni TP
)

// Position es la única entidad mutable con ciclo de vida. El engine garantiza
// cardinalidad ≤ 1: nunca hay dos posiciones abiertas (sin piramidar, sin
// hedging). Se crea al aceptar una Signal estando flat y se destruye al
// convertirse en ClosedTrade.
type Position struct {
	Direction   Direction
	EntryTime   time.Time
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	RiskPips    float64
	BarsHeld    int
}

// ClosedTrade es un registro inmutable del ledger. Nunca se muta tras crearse.
type ClosedTrade struct {
	EntryTime   time.Time
	ExitTime    time.Time
	Direction   Direction
	EntryPrice  float64
	ExitPrice   float64
	StopPrice   float64
	TargetPrice float64
	RiskPips    float64
	GrossPips   float64 // delta de precio firmado en pips
	NetPips     float64 // GrossPips - coste round-trip
	BarsHeld    int
	ExitReason  ExitReason
}

// Won devuelve true si el trade cerró con resultado neto positivo.
func (t ClosedTrade) Won() bool {
	return t.NetPips > 0
}

// EquityPoint es un punto de la curva de equity (pips netos acumulados
// tras cada trade cerrado).
type EquityPoint struct {
	Time    time.Time
	NetPips float64
}
