package strategy

// liquidity.go — pools de liquidez por equal highs / equal lows.
//
// Swings de precio similar (dentro de una tolerancia en pips) se agrupan en
// clusters de 2+; sobre cada pool se concentran stops: buy-side (BSL) sobre
// los highs, sell-side (SSL) bajo los lows. Un sweep (la última barra
// atraviesa el pool) suele preceder a la reversión.

import (
	"sort"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/domain"
)

// PoolKind distingue el lado de la liquidez.
type PoolKind string

const (
	PoolBSL PoolKind = "BSL" // buy-side liquidity: stops de cortos sobre equal highs
	PoolSSL PoolKind = "SSL" // sell-side liquidity: stops de largos bajo equal lows
)

// Pool es un cluster de swings de precio similar.
type Pool struct {
	Price     float64 // precio medio del cluster
	Kind      PoolKind
	Strength  int  // número de swings que lo componen
	LastTouch int  // índice del swing más reciente del cluster
	Swept     bool // la última barra atravesó el pool
}

// LiquidityContext es el análisis de liquidez en el punto de entrada.
type LiquidityContext struct {
	ScoreAdjustment float64 // ajuste [-1, +1] para el score del compositor
	PoolsAbove      []Pool
	PoolsBelow      []Pool
	SweepOccurred   bool
}

// LiquidityDetector agrupa swings en pools y puntúa el contexto de entrada.
type LiquidityDetector struct {
	sym           config.SymbolConfig
	tolerance     float64 // en precio, no en pips
	swingStrength int
}

// NewLiquidityDetector crea un detector con la tolerancia en pips convertida
// a precio según el pip size del símbolo.
func NewLiquidityDetector(cfg config.StrategyConfig, sym config.SymbolConfig) *LiquidityDetector {
	return &LiquidityDetector{
		sym:           sym,
		tolerance:     cfg.LiquidityTolerancePips * sym.PipSize,
		swingStrength: cfg.SwingStrength,
	}
}

// FindPools identifica los pools de la ventana coarse.
func (d *LiquidityDetector) FindPools(bars []domain.Bar) []Pool {
	swings := FindSwings(bars, d.swingStrength)
	if len(swings) == 0 {
		return nil
	}

	var highs, lows []Swing
	for _, s := range swings {
		if s.Kind == SwingHigh {
			highs = append(highs, s)
		} else {
			lows = append(lows, s)
		}
	}

	last := bars[len(bars)-1]
	pools := d.cluster(highs, PoolBSL, last)
	pools = append(pools, d.cluster(lows, PoolSSL, last)...)
	return pools
}

// cluster agrupa swings por precio: ordenados ascendente, un swing entra en
// el cluster actual si dista ≤ tolerance del primero. Clusters de un solo
// swing no forman pool.
func (d *LiquidityDetector) cluster(swings []Swing, kind PoolKind, last domain.Bar) []Pool {
	if len(swings) < 2 {
		return nil
	}

	sorted := make([]Swing, len(swings))
	copy(sorted, swings)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Price < sorted[b].Price })

	var pools []Pool
	cluster := []Swing{sorted[0]}
	for _, s := range sorted[1:] {
		if s.Price-cluster[0].Price <= d.tolerance {
			cluster = append(cluster, s)
			continue
		}
		if len(cluster) >= 2 {
			pools = append(pools, makePool(cluster, kind, last))
		}
		cluster = []Swing{s}
	}
	if len(cluster) >= 2 {
		pools = append(pools, makePool(cluster, kind, last))
	}
	return pools
}

func makePool(cluster []Swing, kind PoolKind, last domain.Bar) Pool {
	var sum float64
	lastTouch := cluster[0].Index
	for _, s := range cluster {
		sum += s.Price
		if s.Index > lastTouch {
			lastTouch = s.Index
		}
	}
	avg := sum / float64(len(cluster))

	swept := false
	if kind == PoolBSL {
		swept = last.High > avg
	} else {
		swept = last.Low < avg
	}

	return Pool{Price: avg, Kind: kind, Strength: len(cluster), LastTouch: lastTouch, Swept: swept}
}

// Context analiza la liquidez alrededor del precio de entrada y devuelve un
// ajuste de score para el compositor:
//
//   - Sweep del lado contrario a la entrada (SSL barrido antes de comprar,
//     BSL barrido antes de vender): +0.5 — absorción institucional.
//   - Pool sin barrer a más de 5 pips en la dirección del TP: +0.3.
//   - Pool sin barrer a menos de 3 pips por delante: -0.5 — trampa de
//     liquidez justo enfrente de la entrada.
func (d *LiquidityDetector) Context(bars []domain.Bar, entry float64, dir domain.Direction) LiquidityContext {
	pools := d.FindPools(bars)

	ctx := LiquidityContext{}
	for _, p := range pools {
		if p.Price > entry {
			ctx.PoolsAbove = append(ctx.PoolsAbove, p)
		} else {
			ctx.PoolsBelow = append(ctx.PoolsBelow, p)
		}
		if p.Swept {
			ctx.SweepOccurred = true
		}
	}

	score := 0.0
	if dir == domain.Long {
		if anySwept(ctx.PoolsBelow, PoolSSL) {
			score += 0.5
		}
		if p, ok := nearest(ctx.PoolsAbove, entry, PoolBSL); ok && !p.Swept {
			distPips := (p.Price - entry) / d.sym.PipSize
			if distPips > 5 {
				score += 0.3
			} else if distPips < 3 {
				score -= 0.5
			}
		}
	} else {
		if anySwept(ctx.PoolsAbove, PoolBSL) {
			score += 0.5
		}
		if p, ok := nearest(ctx.PoolsBelow, entry, PoolSSL); ok && !p.Swept {
			distPips := (entry - p.Price) / d.sym.PipSize
			if distPips > 5 {
				score += 0.3
			} else if distPips < 3 {
				score -= 0.5
			}
		}
	}

	ctx.ScoreAdjustment = clamp(score, -1, 1)
	return ctx
}

func anySwept(pools []Pool, kind PoolKind) bool {
	for _, p := range pools {
		if p.Kind == kind && p.Swept {
			return true
		}
	}
	return false
}

// nearest devuelve el pool del tipo dado más cercano al precio de entrada.
func nearest(pools []Pool, entry float64, kind PoolKind) (Pool, bool) {
	best := Pool{}
	found := false
	for _, p := range pools {
		if p.Kind != kind {
			continue
		}
		if !found || abs(p.Price-entry) < abs(best.Price-entry) {
			best, found = p, true
		}
	}
	return best, found
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
