package engine

// metrics.go — proyección de solo lectura sobre el ledger, calculada una
// vez al final del run. No muta nada: el ledger es inmutable.

import "github.com/alejandrodnm/fxbot/internal/domain"

// Summarize calcula las métricas agregadas del ledger:
//
//   - Win rate sobre net pips (> 0 gana).
//   - Media de ganancia/pérdida sobre los trades TP/SL respectivamente; el
//     risk:reward realizado es su cociente.
//   - Max drawdown: mínimo de (acumulado - máximo acumulado) sobre la curva
//     de net pips, trade a trade. Valor ≤ 0.
func Summarize(ledger []domain.ClosedTrade) domain.Summary {
	s := domain.Summary{TotalTrades: len(ledger)}
	if len(ledger) == 0 {
		return s
	}

	var winSum, lossSum float64
	var cum, peak, maxDD float64
	var barsSum int

	for _, t := range ledger {
		if t.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.TotalNetPips += t.NetPips

		switch t.ExitReason {
		case domain.ExitStop:
			s.StopTrades++
			lossSum += t.NetPips
		case domain.ExitTarget:
			s.TargetTrades++
			winSum += t.NetPips
		case domain.ExitTimeout:
			s.TimeoutTrades++
		}

		cum += t.NetPips
		if cum > peak {
			peak = cum
		}
		if dd := cum - peak; dd < maxDD {
			maxDD = dd
		}

		barsSum += t.BarsHeld
	}

	s.WinRate = 100 * float64(s.Wins) / float64(s.TotalTrades)
	if s.TargetTrades > 0 {
		s.AvgWinPips = winSum / float64(s.TargetTrades)
	}
	if s.StopTrades > 0 {
		s.AvgLossPips = -lossSum / float64(s.StopTrades)
	}
	if s.AvgLossPips > 0 {
		s.RiskReward = s.AvgWinPips / s.AvgLossPips
	}
	s.MaxDrawdown = maxDD
	s.AvgBarsHeld = float64(barsSum) / float64(s.TotalTrades)
	return s
}
