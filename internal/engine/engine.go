package engine

// engine.go — orquestador barra a barra.
//
// Itera las barras finas en orden estricto de timestamp: alimenta el
// agregador incremental, pide señal al evaluador estando flat y evalúa las
// condiciones de salida estando en posición. Determinista por contrato:
// misma secuencia de barras + misma configuración → ledger byte-idéntico
// (sin aleatoriedad, sin reloj de pared en las decisiones).
//
// El evaluador solo ve barras coarse CERRADAS: el bucket en formación
// contiene barras finas futuras dentro de su ventana y usarlo introduciría
// lookahead.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/fxbot/config"
	"github.com/alejandrodnm/fxbot/internal/aggregate"
	"github.com/alejandrodnm/fxbot/internal/domain"
	"github.com/alejandrodnm/fxbot/internal/ports"
	"github.com/alejandrodnm/fxbot/internal/strategy"
)

// fineLookback es la ventana fina mínima: tres barras para el FVG más la
// barra previa del stop (contenida en ellas).
const fineLookback = 3

// Evaluator produce un candidato de entrada a partir de las ventanas coarse
// y fina. Lo implementan strategy.Generator y strategy.Compositor.
type Evaluator interface {
	Evaluate(coarse, fine []domain.Bar) (domain.Signal, bool)
}

// Engine conduce un run completo. Una instancia posee en exclusiva su
// estado; backtests concurrentes sobre símbolos o parámetros distintos usan
// instancias independientes que no comparten nada.
type Engine struct {
	symbol    string
	strat     config.StrategyConfig
	evaluator Evaluator
	cost      CostModel
	agg       *aggregate.Aggregator
	executor  ports.Executor // opcional: frontera de ejecución en vivo

	// BacktestState: vive durante un run, se descarta al terminar.
	coarse   []domain.Bar // ventana de barras coarse cerradas
	fine     []domain.Bar // últimas fineLookback barras finas
	pos      *domain.Position
	entryBar int
	ledger   []domain.ClosedTrade
	equity   []domain.EquityPoint
	cumPips  float64
	lastBar  time.Time
	bars     int
}

// New crea un engine para el símbolo dado. La configuración ya validada se
// copia en construcción: no hay estado ambiente compartido.
func New(symbol string, cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	sym, err := cfg.Symbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	agg, err := aggregate.New(cfg.CoarseBucket())
	if err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}

	var evaluator Evaluator
	if cfg.Strategy.UseCompositor {
		evaluator = strategy.NewCompositor(cfg.Strategy, sym)
	} else {
		evaluator = strategy.NewGenerator(cfg.Strategy, sym)
	}

	return &Engine{
		symbol:    symbol,
		strat:     cfg.Strategy,
		evaluator: evaluator,
		cost:      NewCostModel(sym),
		agg:       agg,
	}, nil
}

// SetExecutor conecta el colaborador de ejecución en vivo. En backtest no
// hay executor y las señales solo mueven el estado interno.
func (e *Engine) SetExecutor(ex ports.Executor) {
	e.executor = ex
}

// Run consume la fuente de barras hasta agotarla o hasta que se cancele el
// contexto (la cancelación es una señal de dejar de iterar entre barras; los
// efectos de una barra son atómicos y no se interrumpen a mitad). Devuelve
// el ledger ordenado, la curva de equity y el resumen.
func (e *Engine) Run(ctx context.Context, source ports.BarSource) (domain.RunResult, error) {
	result := domain.RunResult{
		RunID:     uuid.New().String(),
		Symbol:    e.symbol,
		StartedAt: time.Now().UTC(),
	}

	slog.Info("run starting", "run_id", result.RunID, "symbol", e.symbol,
		"rr", e.strat.RiskRewardRatio, "max_bars", e.strat.MaxBarsPerTrade)

	for {
		select {
		case <-ctx.Done():
			slog.Info("run cancelled, stopping between bars", "run_id", result.RunID)
			return e.finish(result), nil
		default:
		}

		bar, ok, err := source.Next(ctx)
		if err != nil {
			return e.finish(result), fmt.Errorf("engine.Run: next bar: %w", err)
		}
		if !ok {
			return e.finish(result), nil
		}

		if err := e.step(ctx, bar); err != nil {
			return e.finish(result), fmt.Errorf("engine.Run: bar %d: %w", e.bars, err)
		}
	}
}

// step procesa una barra fina completa. Sus efectos son atómicos: validación,
// agregación, entrada si flat y salida si en posición.
func (e *Engine) step(ctx context.Context, bar domain.Bar) error {
	if err := bar.Validate(); err != nil {
		return err
	}
	if !e.lastBar.IsZero() && !bar.Time.After(e.lastBar) {
		return fmt.Errorf("bar at %s after %s: %w",
			bar.Time.Format(time.RFC3339), e.lastBar.Format(time.RFC3339),
			domain.ErrNonMonotonic)
	}
	e.lastBar = bar.Time
	e.bars++

	closed, ok, err := e.agg.Append(bar)
	if err != nil {
		return err
	}
	if ok {
		e.coarse = append(e.coarse, closed)
		if len(e.coarse) > e.strat.CoarseLookback {
			e.coarse = e.coarse[1:]
		}
	}

	e.fine = append(e.fine, bar)
	if len(e.fine) > fineLookback {
		e.fine = e.fine[1:]
	}

	if e.pos == nil {
		if sig, ok := e.evaluator.Evaluate(e.coarse, e.fine); ok {
			e.openPosition(sig)
			slog.Info("entry", "symbol", e.symbol, "signal", sig.Format())
			if e.executor != nil {
				if err := e.executor.Submit(ctx, sig); err != nil {
					slog.Warn("executor submit failed", "err", err)
				}
			}
		}
	}

	// La barra de entrada también se evalúa para salida: su rango puede
	// alcanzar ya el stop colocado bajo el extremo de la barra anterior.
	if e.pos != nil {
		e.pos.BarsHeld = e.bars - e.entryBar
		if reason, price, ok := checkExit(e.pos, bar, e.strat.MaxBarsPerTrade); ok {
			e.closePosition(ctx, bar, price, reason)
		}
	}
	return nil
}

// closePosition liquida la posición, anota el ClosedTrade en el ledger y
// extiende la curva de equity. Closed → Flat es inmediato.
func (e *Engine) closePosition(ctx context.Context, bar domain.Bar, exitPrice float64, reason domain.ExitReason) {
	pos := e.pos
	gross, net := e.cost.Settle(pos.Direction, pos.EntryPrice, exitPrice)

	trade := domain.ClosedTrade{
		EntryTime:   pos.EntryTime,
		ExitTime:    bar.Time,
		Direction:   pos.Direction,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exitPrice,
		StopPrice:   pos.StopPrice,
		TargetPrice: pos.TargetPrice,
		RiskPips:    pos.RiskPips,
		GrossPips:   gross,
		NetPips:     net,
		BarsHeld:    pos.BarsHeld,
		ExitReason:  reason,
	}
	e.ledger = append(e.ledger, trade)
	e.cumPips += net
	e.equity = append(e.equity, domain.EquityPoint{Time: bar.Time, NetPips: e.cumPips})

	slog.Info("exit", "symbol", e.symbol, "reason", string(reason),
		"price", fmt.Sprintf("%.5f", exitPrice),
		"net_pips", fmt.Sprintf("%+.2f", net),
		"gross_pips", fmt.Sprintf("%+.2f", gross),
		"bars_held", pos.BarsHeld)

	if e.executor != nil {
		if err := e.executor.Exit(ctx, trade); err != nil {
			slog.Warn("executor exit failed", "err", err)
		}
	}
	e.pos = nil
}

// finish cierra el run: resume el ledger y lo adjunta al resultado. Una
// posición aún abierta al agotarse la fuente queda fuera del ledger — solo
// se contabilizan trades cerrados.
func (e *Engine) finish(result domain.RunResult) domain.RunResult {
	result.Ledger = e.ledger
	result.Equity = e.equity
	result.Summary = Summarize(e.ledger)
	result.FineBars = e.bars

	slog.Info("run finished", "run_id", result.RunID, "bars", e.bars,
		"trades", len(e.ledger), "net_pips", fmt.Sprintf("%+.2f", e.cumPips))
	return result
}
