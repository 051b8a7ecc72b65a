package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo a un io.Writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Banner imprime el resumen de arranque.
func (c *Console) Banner(mode domain.Mode, triangles, streams int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Triangular arbitrage bot (%s mode)\n", mode)
	fmt.Fprintf(c.out, "✔ Triangles: %d\n", triangles)
	fmt.Fprintf(c.out, "✔ Streams: %d\n", streams)
}

// NotifyTrade imprime un bloque por trade committed.
func (c *Console) NotifyTrade(_ context.Context, o domain.TradeOutcome, s domain.EngineState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "%s TRADE EXECUTED\n", o.Mode)
	fmt.Fprintf(&sb, "PAIR      : %s\n", o.Pair)
	fmt.Fprintf(&sb, "DIRECTION : %s\n", directionLabel(o))
	fmt.Fprintf(&sb, "EDGE      : %.3f%%\n", o.Edge*100)
	fmt.Fprintf(&sb, "PROFIT    : %.2f USDT\n", o.RealizedPnL)
	if o.Mode == domain.ModePaper {
		fmt.Fprintf(&sb, "BALANCE   : %.2f USDT\n", s.Balance)
	} else {
		fmt.Fprintf(&sb, "TOTAL PNL : %.2f USDT\n", s.CumulativePnL)
	}
	fmt.Fprintf(&sb, "TRADES    : %d\n", s.TradeCount)

	_, err := io.WriteString(c.out, sb.String())
	return err
}

// Report imprime el resumen de la sesión agrupado por triángulo. El balance
// solo existe en paper.
func (c *Console) Report(mode domain.Mode, outcomes []domain.TradeOutcome, s domain.EngineState, started time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\nSession %s: %d trades, PnL %.4f USDT\n",
		time.Since(started).Truncate(time.Second), s.TradeCount, s.CumulativePnL)
	if len(outcomes) == 0 {
		fmt.Fprintln(c.out, "No trades executed")
		return
	}
	c.renderSummary(outcomes)

	if mode == domain.ModePaper {
		fmt.Fprintf(c.out, "Balance: %.2f USDT\n", s.Balance)
	}
}

// History imprime lo que el journal registró en [from, to].
func (c *Console) History(outcomes []domain.TradeOutcome, aborts int, from, to time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pnl float64
	for _, o := range outcomes {
		pnl += o.RealizedPnL
	}
	fmt.Fprintf(c.out, "\nJournal %s → %s: %d trades, %d aborts, PnL %.4f USDT\n",
		from.Format(time.DateTime), to.Format(time.DateTime), len(outcomes), aborts, pnl)
	if len(outcomes) == 0 {
		fmt.Fprintln(c.out, "No trades journalled")
		return
	}
	c.renderSummary(outcomes)
}

// renderSummary escribe la tabla por triángulo. Caller holds c.mu.
func (c *Console) renderSummary(outcomes []domain.TradeOutcome) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Triangle", "Trades", "Fwd", "Rev", "Avg edge", "Best edge", "PnL")
	for _, row := range summarize(outcomes) {
		table.Append(
			row.key,
			fmt.Sprintf("%d", row.trades),
			fmt.Sprintf("%d", row.forward),
			fmt.Sprintf("%d", row.reverse),
			fmt.Sprintf("%.3f%%", row.edgeSum/float64(row.trades)*100),
			fmt.Sprintf("%.3f%%", row.bestEdge*100),
			fmt.Sprintf("%.4f", row.pnl),
		)
	}
	table.Render()
}

type triangleSummary struct {
	key      string
	trades   int
	forward  int
	reverse  int
	edgeSum  float64
	bestEdge float64
	pnl      float64
}

// summarize agrupa outcomes por triángulo, mayor PnL primero.
func summarize(outcomes []domain.TradeOutcome) []triangleSummary {
	byKey := make(map[string]*triangleSummary)
	for _, o := range outcomes {
		row, ok := byKey[o.TriangleKey]
		if !ok {
			row = &triangleSummary{key: o.TriangleKey, bestEdge: o.Edge}
			byKey[o.TriangleKey] = row
		}
		row.trades++
		if o.Direction == domain.Reverse {
			row.reverse++
		} else {
			row.forward++
		}
		row.edgeSum += o.Edge
		row.bestEdge = max(row.bestEdge, o.Edge)
		row.pnl += o.RealizedPnL
	}

	rows := make([]triangleSummary, 0, len(byKey))
	for _, r := range byKey {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].pnl != rows[j].pnl {
			return rows[i].pnl > rows[j].pnl
		}
		return rows[i].key < rows[j].key
	})
	return rows
}

// directionLabel renders the cycle from the pair, e.g. "USDT → ADA → BNB → USDT".
func directionLabel(o domain.TradeOutcome) string {
	alt, base, ok := strings.Cut(o.Pair, "/")
	if !ok {
		return o.Direction.String()
	}
	return o.Direction.Path(domain.Triangle{Alt: alt, Base: base})
}
