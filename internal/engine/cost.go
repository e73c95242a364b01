package engine

import (
	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

// CostModel convierte movimiento de precio en resultado neto en pips. El
// coste es una constante por trade round-trip (spread + comisión): no varía
// con volatilidad ni volumen. Costes escalados por volatilidad son una
// extensión anotada, no comportamiento requerido.
type CostModel struct {
	pipSize       float64
	totalCostPips float64
}

// NewCostModel crea el modelo de costes del símbolo.
func NewCostModel(sym config.SymbolConfig) CostModel {
	return CostModel{pipSize: sym.PipSize, totalCostPips: sym.TotalCostPips()}
}

// Settle liquida un trade: gross es el delta de precio firmado en la
// dirección del trade (positivo = beneficio) expresado en pips; net resta el
// coste round-trip exactamente una vez.
func (c CostModel) Settle(dir domain.Direction, entry, exit float64) (gross, net float64) {
	gross = dir.Sign() * (exit - entry) / c.pipSize
	net = gross - c.totalCostPips
	return gross, net
}
