package domain

import (
	"fmt"
	"time"
)

// Direction es el sentido de un trade.
type Direction int

const (
	Long  Direction = 1
	Short Direction = -1
)

// String devuelve la dirección en el formato del ledger ("BUY"/"SELL").
func (d Direction) String() string {
	if d == Long {
		return "BUY"
	}
	return "SELL"
}

// Sign devuelve +1 para Long y -1 para Short, para aritmética de precios.
func (d Direction) Sign() float64 {
	return float64(d)
}

// Signal es un candidato de entrada producido por el generador de señales.
// Es un valor transitorio: el engine lo consume inmediatamente para abrir
// una posición y no se persiste por separado.
type Signal struct {
	Direction   Direction
	EntryTime   time.Time
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	RiskPips    float64 // |entry - stop| en pips
	ProfitPips  float64 // RiskPips × risk_reward_ratio

	// Metadatos del compositor (cero si no se usa).
	CompositeScore float64
}

// Format devuelve la señal en una línea, para logs.
func (s Signal) Format() string {
	out := fmt.Sprintf("%s @ %.5f | SL %.5f | TP %.5f | Risk %.2fp",
		s.Direction, s.EntryPrice, s.StopPrice, s.TargetPrice, s.RiskPips)
	if s.CompositeScore > 0 {
		out += fmt.Sprintf(" | Score %.2f", s.CompositeScore)
	}
	return out
}
