package strategy

// compositor.go — combinación ponderada de señales ICT.
//
// OB+FVG es la condición base obligatoria; BOS, CHoCH y el contexto de
// liquidez ajustan el score. Solo se acepta la entrada si el score compuesto
// alcanza el umbral configurado.

import (
	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Compositor envuelve al Generator base y lo condiciona con los módulos de
// estructura. Implementa la misma firma Evaluate, así el engine puede usar
// uno u otro sin distinguirlos.
type Compositor struct {
	gen       *Generator
	liquidity *LiquidityDetector
	weights   config.CompositorWeights
	threshold float64
	strength  int
}

// NewCompositor crea un compositor sobre un generador base.
func NewCompositor(cfg config.StrategyConfig, sym config.SymbolConfig) *Compositor {
	return &Compositor{
		gen:       NewGenerator(cfg, sym),
		liquidity: NewLiquidityDetector(cfg, sym),
		weights:   cfg.CompositorWeights,
		threshold: cfg.CompositorThreshold,
		strength:  cfg.SwingStrength,
	}
}

// Evaluate genera la señal base OB+FVG y, si existe, la puntúa:
//
//   - OB+FVG presente: componente 1.0 (siempre, es el prerequisito).
//   - BOS alineado: 1.0; BOS en contra: -0.5; sin BOS: 0.
//   - CHoCH alineado: 1.0; en contra: -0.3; sin CHoCH: 0.
//   - Liquidez: ajuste [-1, +1] del detector.
//
// Devuelve la señal con su score si score ≥ threshold.
func (c *Compositor) Evaluate(coarse, fine []domain.Bar) (domain.Signal, bool) {
	sig, ok := c.gen.Evaluate(coarse, fine)
	if !ok {
		return domain.Signal{}, false
	}

	score := c.weights.OBFVG * 1.0

	if bos, ok := DetectBOS(coarse, c.strength); ok {
		if bos == sig.Direction {
			score += c.weights.BOS * 1.0
		} else {
			score += c.weights.BOS * -0.5
		}
	}

	if choch, ok := DetectCHoCH(coarse, c.strength); ok {
		if choch == sig.Direction {
			score += c.weights.CHoCH * 1.0
		} else {
			score += c.weights.CHoCH * -0.3
		}
	}

	liq := c.liquidity.Context(coarse, sig.EntryPrice, sig.Direction)
	score += c.weights.Liquidity * liq.ScoreAdjustment

	if score < c.threshold {
		return domain.Signal{}, false
	}

	sig.CompositeScore = score
	return sig, true
}
