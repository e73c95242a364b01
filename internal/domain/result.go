package domain

import "time"

// Summary son las métricas agregadas de un run. Es una proyección de solo
// lectura sobre el ledger, calculada una vez al final.
type Summary struct {
	TotalTrades   int
	Wins          int
	Losses        int
	WinRate       float64 // porcentaje
	TotalNetPips  float64
	AvgWinPips    float64 // media de net pips de los trades TP
	AvgLossPips   float64 // media (en valor absoluto) de los trades SL
	RiskReward    float64 // AvgWinPips / AvgLossPips
	MaxDrawdown   float64 // mínimo de (acumulado - máximo acumulado), ≤ 0
	StopTrades    int
	TargetTrades  int
	TimeoutTrades int
	AvgBarsHeld   float64
}

// RunResult es el resultado completo de un run del engine.
type RunResult struct {
	RunID     string // uuid del run, clave de sesión en storage
	Symbol    string
	StartedAt time.Time
	Ledger    []ClosedTrade
	Equity    []EquityPoint
	Summary   Summary
	FineBars  int // barras finas procesadas
}
