package strategy

// signal.go — composición multi-timeframe: el timeframe coarse fija la
// dirección (order block), el fino confirma el timing (FVG) y filtra la
// sesión. Solo puede producirse una señal por barra fina; el engine no
// invoca al generador si ya hay una posición abierta.

import (
	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Generator produce candidatos de entrada a partir de las ventanas coarse y
// fina. No tiene estado de engine: es unit-testeable contra fixtures
// literales de barras.
type Generator struct {
	cfg     config.StrategyConfig
	sym     config.SymbolConfig
	allowed map[int]struct{}
}

// NewGenerator crea un generador. La configuración ya fue validada en
// construcción del Config.
func NewGenerator(cfg config.StrategyConfig, sym config.SymbolConfig) *Generator {
	allowed := make(map[int]struct{}, len(cfg.AllowedHours))
	for _, h := range cfg.AllowedHours {
		allowed[h] = struct{}{}
	}
	return &Generator{cfg: cfg, sym: sym, allowed: allowed}
}

// IsTradingHour devuelve true si la hora (UTC) está en la sesión permitida.
func (g *Generator) IsTradingHour(hour int) bool {
	_, ok := g.allowed[hour]
	return ok
}

// Evaluate examina las dos últimas barras coarse y las tres últimas finas y
// devuelve un candidato de entrada, si lo hay:
//
//  1. Order block en coarse → sesgo direccional. Sin sesgo, sin señal.
//  2. FVG en fino, alineado con el sesgo (salvo skip_fvg_confirm).
//  3. Filtro de sesión sobre la hora de la barra fina actual.
//  4. Entry = close fino actual; SL = extremo de la barra fina anterior
//     desplazado hacia fuera por el stop buffer; TP = entry ± riesgo × ratio.
//
// Un SL que quede del lado equivocado del entry (riesgo ≤ 0) invalida la
// señal.
func (g *Generator) Evaluate(coarse, fine []domain.Bar) (domain.Signal, bool) {
	if len(coarse) < 2 || len(fine) < 3 {
		return domain.Signal{}, false
	}

	bias, ok := DetectOrderBlock(coarse[len(coarse)-2], coarse[len(coarse)-1])
	if !ok {
		return domain.Signal{}, false
	}

	if !g.cfg.SkipFVGConfirm {
		n := len(fine)
		gap, ok := DetectGap(fine[n-3], fine[n-2], fine[n-1])
		if !ok || gap != bias {
			return domain.Signal{}, false
		}
	}

	curr := fine[len(fine)-1]
	if !g.IsTradingHour(curr.Time.Hour()) {
		return domain.Signal{}, false
	}

	prev := fine[len(fine)-2]
	entry := curr.Close

	var stop, riskPips float64
	if bias == domain.Long {
		stop = prev.Low - g.sym.StopBuffer
		riskPips = (entry - stop) / g.sym.PipSize
	} else {
		stop = prev.High + g.sym.StopBuffer
		riskPips = (stop - entry) / g.sym.PipSize
	}
	if riskPips <= 0 {
		return domain.Signal{}, false
	}

	profitPips := riskPips * g.cfg.RiskRewardRatio
	target := entry + bias.Sign()*profitPips*g.sym.PipSize

	return domain.Signal{
		Direction:   bias,
		EntryTime:   curr.Time,
		EntryPrice:  entry,
		StopPrice:   stop,
		TargetPrice: target,
		RiskPips:    riskPips,
		ProfitPips:  profitPips,
	}, true
}
