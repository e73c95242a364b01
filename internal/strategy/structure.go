package strategy

// structure.go — estructura de mercado sobre la ventana coarse.
//
// SwingDetector identifica pivotes por lookback de N barras a cada lado y
// los etiqueta HH/HL/LH/LL contra el swing previo del mismo tipo. BOS y
// CHoCH leen esa secuencia: BOS confirma continuación de tendencia, CHoCH
// detecta el primer quiebre en contra.

import (
	"sort"
	"time"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// SwingKind distingue pivotes de alto y de bajo.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingLabel clasifica un swing contra el anterior del mismo tipo.
type SwingLabel string

const (
	LabelNone SwingLabel = ""
	LabelHH   SwingLabel = "HH" // higher high
	LabelLH   SwingLabel = "LH" // lower high
	LabelHL   SwingLabel = "HL" // higher low
	LabelLL   SwingLabel = "LL" // lower low
)

// Swing es un pivote identificado en la serie coarse.
type Swing struct {
	Index int
	Time  time.Time
	Price float64
	Kind  SwingKind
	Label SwingLabel
}

// FindSwings devuelve los pivotes de la serie, en orden de índice. Un pivote
// de alto exige que su high sea el máximo estricto de la ventana de 2N+1
// barras centrada en él (empates descartados); simétrico para los bajos.
func FindSwings(bars []domain.Bar, strength int) []Swing {
	if strength <= 0 || len(bars) < 2*strength+1 {
		return nil
	}

	var swings []Swing
	var lastHigh, lastLow float64
	var haveHigh, haveLow bool

	for i := strength; i < len(bars)-strength; i++ {
		if isWindowExtreme(bars, i, strength, true) {
			label := LabelNone
			if haveHigh {
				label = LabelLH
				if bars[i].High > lastHigh {
					label = LabelHH
				}
			}
			swings = append(swings, Swing{
				Index: i, Time: bars[i].Time, Price: bars[i].High,
				Kind: SwingHigh, Label: label,
			})
			lastHigh, haveHigh = bars[i].High, true
		}

		if isWindowExtreme(bars, i, strength, false) {
			label := LabelNone
			if haveLow {
				label = LabelLL
				if bars[i].Low > lastLow {
					label = LabelHL
				}
			}
			swings = append(swings, Swing{
				Index: i, Time: bars[i].Time, Price: bars[i].Low,
				Kind: SwingLow, Label: label,
			})
			lastLow, haveLow = bars[i].Low, true
		}
	}

	sort.SliceStable(swings, func(a, b int) bool { return swings[a].Index < swings[b].Index })
	return swings
}

// isWindowExtreme comprueba que la barra i es el extremo único de su ventana.
func isWindowExtreme(bars []domain.Bar, i, strength int, high bool) bool {
	var pivot float64
	if high {
		pivot = bars[i].High
	} else {
		pivot = bars[i].Low
	}

	ties := 0
	for j := i - strength; j <= i+strength; j++ {
		v := bars[j].Low
		if high {
			v = bars[j].High
		}
		if high && v > pivot {
			return false
		}
		if !high && v < pivot {
			return false
		}
		if v == pivot {
			ties++
		}
	}
	return ties == 1
}

// swingTrend deduce la tendencia de la secuencia de labels más recientes:
// HH+HL → alcista, LH+LL → bajista. Cualquier otra combinación no es
// concluyente.
func swingTrend(swings []Swing) (domain.Direction, bool) {
	var lastHighLabel, lastLowLabel SwingLabel
	for _, s := range swings {
		if s.Label == LabelNone {
			continue
		}
		if s.Kind == SwingHigh {
			lastHighLabel = s.Label
		} else {
			lastLowLabel = s.Label
		}
	}

	if lastHighLabel == LabelHH && lastLowLabel == LabelHL {
		return domain.Long, true
	}
	if lastHighLabel == LabelLH && lastLowLabel == LabelLL {
		return domain.Short, true
	}
	return 0, false
}

// lastSwing devuelve el último swing del tipo pedido.
func lastSwing(swings []Swing, kind SwingKind) (Swing, bool) {
	for i := len(swings) - 1; i >= 0; i-- {
		if swings[i].Kind == kind {
			return swings[i], true
		}
	}
	return Swing{}, false
}

// DetectBOS detecta un break of structure: en tendencia alcista, el close
// actual supera el último swing high (continuación Long); en bajista, el
// close perfora el último swing low (continuación Short).
func DetectBOS(bars []domain.Bar, strength int) (domain.Direction, bool) {
	swings := FindSwings(bars, strength)
	if len(swings) < 3 {
		return 0, false
	}

	trend, ok := swingTrend(swings)
	if !ok {
		return 0, false
	}

	close := bars[len(bars)-1].Close
	switch trend {
	case domain.Long:
		if sh, ok := lastSwing(swings, SwingHigh); ok && close > sh.Price {
			return domain.Long, true
		}
	case domain.Short:
		if sl, ok := lastSwing(swings, SwingLow); ok && close < sl.Price {
			return domain.Short, true
		}
	}
	return 0, false
}

// DetectCHoCH detecta un change of character: el primer quiebre contra la
// tendencia vigente. En alcista, perforar el último swing low es señal de
// giro Short; en bajista, superar el último swing high es giro Long.
func DetectCHoCH(bars []domain.Bar, strength int) (domain.Direction, bool) {
	swings := FindSwings(bars, strength)
	if len(swings) < 3 {
		return 0, false
	}

	trend, ok := swingTrend(swings)
	if !ok {
		return 0, false
	}

	close := bars[len(bars)-1].Close
	switch trend {
	case domain.Long:
		if sl, ok := lastSwing(swings, SwingLow); ok && close < sl.Price {
			return domain.Short, true
		}
	case domain.Short:
		if sh, ok := lastSwing(swings, SwingHigh); ok && close > sh.Price {
			return domain.Long, true
		}
	}
	return 0, false
}
