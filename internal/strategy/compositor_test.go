package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

func compositorConfig() config.StrategyConfig {
	cfg := testStrategyConfig()
	cfg.SwingStrength = 2
	cfg.LiquidityTolerancePips = 3.0
	cfg.CompositorThreshold = 0.6
	cfg.CompositorWeights = config.CompositorWeights{
		OBFVG: 0.4, BOS: 0.3, CHoCH: 0.2, Liquidity: 0.1,
	}
	return cfg
}

// uptrendWithLongOB: la serie alcista de structure_test con las dos últimas
// barras reescritas como order block Long (bajista + alcista que barre su
// low), manteniendo los mismos highs/lows para no mover los swings.
func uptrendWithLongOB() []domain.Bar {
	bars := uptrendBars()
	bars[11].Open, bars[11].Close = 11.8, 10.8
	bars[12] = sbar(12, 14.4, 10.5)
	bars[12].Open, bars[12].Close = 10.55, 14.2
	return bars
}

func TestCompositor_BaseSignalOnly(t *testing.T) {
	// Coarse de dos barras: sin historial para BOS/CHoCH/liquidez, el score
	// es solo el componente OB+FVG.
	cfg := compositorConfig()
	cfg.CompositorWeights = config.CompositorWeights{OBFVG: 1.0}
	cfg.CompositorThreshold = 0.9
	comp := NewCompositor(cfg, testSymbolConfig())

	sig, ok := comp.Evaluate(coarseLongOB(), fineGapUp())
	require.True(t, ok)
	assert.Equal(t, domain.Long, sig.Direction)
	assert.InDelta(t, 1.0, sig.CompositeScore, 1e-9)
}

func TestCompositor_BelowThreshold(t *testing.T) {
	cfg := compositorConfig()
	cfg.CompositorWeights = config.CompositorWeights{OBFVG: 1.0}
	cfg.CompositorThreshold = 1.5
	comp := NewCompositor(cfg, testSymbolConfig())

	_, ok := comp.Evaluate(coarseLongOB(), fineGapUp())
	assert.False(t, ok)
}

func TestCompositor_BOSAligned(t *testing.T) {
	// Tendencia alcista con BOS Long y señal base Long: 0.4 + 0.3 = 0.7
	comp := NewCompositor(compositorConfig(), testSymbolConfig())

	sig, ok := comp.Evaluate(uptrendWithLongOB(), fineGapUp())
	require.True(t, ok)
	assert.InDelta(t, 0.7, sig.CompositeScore, 1e-9)
}

func TestCompositor_BOSAgainstSignal(t *testing.T) {
	// BOS Long vigente pero order block Short en las dos últimas coarse:
	// 0.4 - 0.3×0.5 = 0.25, por debajo del umbral 0.6.
	// bars[11] alcista, bars[12] bajista cuyo high 14.4 barre el 12.0 previo
	bars := uptrendBars()
	bars[11].Open, bars[11].Close = 10.8, 11.8
	bars[12].Open, bars[12].Close = 14.35, 14.2

	fineDown := []domain.Bar{
		bar(30, 1.08010, 1.08020, 1.07985, 1.07990),
		bar(31, 1.07975, 1.07980, 1.07950, 1.07960),
		bar(32, 1.07948, 1.07950, 1.07930, 1.07935),
	}

	comp := NewCompositor(compositorConfig(), testSymbolConfig())
	_, ok := comp.Evaluate(bars, fineDown)
	assert.False(t, ok)

	// Con un umbral más bajo la misma señal pasa con su score penalizado
	cfg := compositorConfig()
	cfg.CompositorThreshold = 0.2
	comp = NewCompositor(cfg, testSymbolConfig())

	sig, ok := comp.Evaluate(bars, fineDown)
	require.True(t, ok)
	assert.Equal(t, domain.Short, sig.Direction)
	assert.InDelta(t, 0.25, sig.CompositeScore, 1e-9)
}

func TestCompositor_NoBaseSignal(t *testing.T) {
	cfg := compositorConfig()
	cfg.CompositorThreshold = 0 // ni siquiera con umbral nulo
	comp := NewCompositor(cfg, testSymbolConfig())

	coarse := []domain.Bar{
		bar(0, 1.0780, 1.0792, 1.0778, 1.0790),
		bar(15, 1.0790, 1.0800, 1.0788, 1.0798),
	}
	_, ok := comp.Evaluate(coarse, fineGapUp())
	assert.False(t, ok)
}
