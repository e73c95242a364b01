package engine

// position.go — ciclo de vida de la posición: Flat → Open → Closed(reason).
//
// El espacio de estados completo. No hay fills parciales, ni scale-in, ni
// re-entrada estando Open. Closed → Flat es inmediato tras anotar el trade
// en el ledger.

import "github.com/alejandrodnm/fxbot/internal/domain"

// openPosition transiciona Flat → Open. Abrir con una posición ya abierta es
// un defecto del dispatch del engine, no un fallo de usuario: se aborta.
func (e *Engine) openPosition(sig domain.Signal) {
	if e.pos != nil {
		panic("engine: position already open — single-position invariant broken")
	}
	e.pos = &domain.Position{
		Direction:   sig.Direction,
		EntryTime:   sig.EntryTime,
		EntryPrice:  sig.EntryPrice,
		StopPrice:   sig.StopPrice,
		TargetPrice: sig.TargetPrice,
		RiskPips:    sig.RiskPips,
	}
	e.entryBar = e.bars
}

// checkExit evalúa las condiciones de salida sobre la barra actual, en orden
// determinista:
//
//  1. Stop: el low (long) o high (short) alcanza o perfora el stop. Se
//     comprueba ANTES que el target: si el rango de una sola barra cubre
//     ambos, se asume que el stop se tocó primero (tie-break conservador,
//     decisión de modelado — no un fallo).
//  2. Target: el high (long) o low (short) alcanza o perfora el target.
//  3. Timeout: BarsHeld llegó al máximo configurado; se sale al close actual.
//
// Devuelve el precio de salida y la razón, u ok=false si la posición sigue
// abierta.
func checkExit(pos *domain.Position, bar domain.Bar, maxBars int) (reason domain.ExitReason, price float64, ok bool) {
	if pos.Direction == domain.Long {
		if bar.Low <= pos.StopPrice {
			return domain.ExitStop, pos.StopPrice, true
		}
		if bar.High >= pos.TargetPrice {
			return domain.ExitTarget, pos.TargetPrice, true
		}
	} else {
		if bar.High >= pos.StopPrice {
			return domain.ExitStop, pos.StopPrice, true
		}
		if bar.Low <= pos.TargetPrice {
			return domain.ExitTarget, pos.TargetPrice, true
		}
	}

	if pos.BarsHeld >= maxBars {
		return domain.ExitTimeout, bar.Close, true
	}
	return "", 0, false
}
