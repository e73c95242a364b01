package notify

// console.go — reporting del run por consola.
//
// Modo compacto: una línea con las métricas clave. Modo tabla: ledger
// completo con tablewriter + bloque de resumen de rendimiento.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// Console implementa ports.Reporter.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Report imprime el resultado del run en el modo configurado.
func (c *Console) Report(_ context.Context, result domain.RunResult) error {
	if result.Summary.TotalTrades == 0 {
		fmt.Fprintf(c.out, "[%s] %s: no trades executed (%d bars)\n",
			result.StartedAt.Format("15:04:05"), result.Symbol, result.FineBars)
		return nil
	}

	if c.table {
		c.printLedger(result)
	}
	c.printSummary(result)
	return nil
}

// printLedger imprime el ledger completo de trades.
func (c *Console) printLedger(result domain.RunResult) {
	fmt.Fprintf(c.out, "\n%s — run %s — %d trades over %d bars\n",
		result.Symbol, shortID(result.RunID), result.Summary.TotalTrades, result.FineBars)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Exit", "Dir", "Entry px", "Exit px", "Risk", "Gross", "Net", "Bars", "Reason")

	for i, t := range result.Ledger {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.EntryTime.Format(timeLayout),
			t.ExitTime.Format(timeLayout),
			t.Direction.String(),
			fmt.Sprintf("%.5f", t.EntryPrice),
			fmt.Sprintf("%.5f", t.ExitPrice),
			fmt.Sprintf("%.2fp", t.RiskPips),
			fmt.Sprintf("%+.2fp", t.GrossPips),
			fmt.Sprintf("%+.2fp", t.NetPips),
			fmt.Sprintf("%d", t.BarsHeld),
			string(t.ExitReason),
		)
	}

	table.Render()
}

const timeLayout = "2006-01-02 15:04"

// printSummary imprime el bloque de resumen de rendimiento.
func (c *Console) printSummary(result domain.RunResult) {
	s := result.Summary
	line := strings.Repeat("=", 60)

	fmt.Fprintf(c.out, "\n%s\n", line)
	fmt.Fprintf(c.out, "PERFORMANCE SUMMARY — %s\n", result.Symbol)
	fmt.Fprintf(c.out, "%s\n", line)
	fmt.Fprintf(c.out, "Total Trades:        %d\n", s.TotalTrades)
	fmt.Fprintf(c.out, "Wins/Losses:         %d / %d\n", s.Wins, s.Losses)
	fmt.Fprintf(c.out, "Win Rate:            %.2f%%\n", s.WinRate)
	fmt.Fprintf(c.out, "Total Net Pips:      %+.2fp\n", s.TotalNetPips)
	fmt.Fprintf(c.out, "Average Win:         %+.2fp\n", s.AvgWinPips)
	fmt.Fprintf(c.out, "Average Loss:        %+.2fp\n", s.AvgLossPips)
	fmt.Fprintf(c.out, "Risk:Reward Ratio:   %.2f\n", s.RiskReward)
	fmt.Fprintf(c.out, "Max Drawdown:        %.2fp\n", s.MaxDrawdown)
	fmt.Fprintf(c.out, "TP/SL/Timeout:       %d/%d/%d\n", s.TargetTrades, s.StopTrades, s.TimeoutTrades)
	fmt.Fprintf(c.out, "Avg Bars Held:       %.1f\n", s.AvgBarsHeld)
	fmt.Fprintf(c.out, "%s\n", line)
}

// shortID trunca el uuid del run para el encabezado.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PaperExecutor implementa ports.Executor imprimiendo las órdenes que un
// broker real recibiría. Es el colaborador de ejecución por defecto en modo
// en vivo sin broker conectado.
type PaperExecutor struct {
	out io.Writer
}

// NewPaperExecutor crea un executor de papel que escribe a stdout.
func NewPaperExecutor() *PaperExecutor {
	return &PaperExecutor{out: os.Stdout}
}

// NewPaperExecutorWriter crea un executor de papel para tests.
func NewPaperExecutorWriter(w io.Writer) *PaperExecutor {
	return &PaperExecutor{out: w}
}

// Submit imprime la orden de entrada.
func (p *PaperExecutor) Submit(_ context.Context, sig domain.Signal) error {
	_, err := fmt.Fprintf(p.out, "[%s] ORDER  %s\n",
		sig.EntryTime.Format(time.RFC3339), sig.Format())
	return err
}

// Exit imprime el cierre de la posición.
func (p *PaperExecutor) Exit(_ context.Context, trade domain.ClosedTrade) error {
	_, err := fmt.Fprintf(p.out, "[%s] CLOSE  %s %s @ %.5f | P&L %+.2fp\n",
		trade.ExitTime.Format(time.RFC3339), trade.ExitReason,
		trade.Direction, trade.ExitPrice, trade.NetPips)
	return err
}
