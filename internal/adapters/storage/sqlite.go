package storage

// Journal de auditoría de trades y aborts.
//
// Solo escritura desde el engine: nunca se lee al arrancar para restaurar
// estado. Los timestamps se guardan como unix millis para que los rangos
// comparen numéricamente.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/triarb/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por trade committed
CREATE TABLE IF NOT EXISTS trades (
    id           TEXT PRIMARY KEY,
    trigger_id   TEXT    NOT NULL,
    triangle_key TEXT    NOT NULL,
    pair         TEXT    NOT NULL,
    direction    TEXT    NOT NULL,
    edge         REAL    NOT NULL,
    notional     REAL    NOT NULL,
    pnl          REAL    NOT NULL,
    mode         TEXT    NOT NULL,
    executed_at  INTEGER NOT NULL
);

-- Triggers rechazados o abortados, con el resultado de cada cancelación
CREATE TABLE IF NOT EXISTS aborts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    trigger_id   TEXT    NOT NULL,
    triangle_key TEXT    NOT NULL,
    direction    TEXT    NOT NULL,
    edge         REAL    NOT NULL,
    reason       TEXT    NOT NULL,
    cancels      TEXT    NOT NULL DEFAULT '',
    aborted_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_at   ON trades(executed_at);
CREATE INDEX IF NOT EXISTS idx_trades_tri  ON trades(triangle_key);
CREATE INDEX IF NOT EXISTS idx_aborts_at   ON aborts(aborted_at);
`

const retentionAborts = 30 * 24 * time.Hour // aborts: 30 días

// SQLiteJournal implementa ports.TradeJournal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveOutcome appends a committed trade.
func (j *SQLiteJournal) SaveOutcome(ctx context.Context, o domain.TradeOutcome) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades (id, trigger_id, triangle_key, pair, direction, edge, notional, pnl, mode, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TriggerID, o.TriangleKey, o.Pair, o.Direction.String(),
		o.Edge, o.NotionalSize, o.RealizedPnL, string(o.Mode), o.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveOutcome: insert %s: %w", o.ID, err)
	}
	return nil
}

// SaveAbort appends a refused or aborted trigger.
func (j *SQLiteJournal) SaveAbort(ctx context.Context, a domain.Abort) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO aborts (trigger_id, triangle_key, direction, edge, reason, cancels, aborted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.TriggerID, a.TriangleKey, a.Direction.String(), a.Edge, a.Reason,
		formatCancels(a.Cancels), a.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveAbort: insert %s: %w", a.TriggerID, err)
	}
	return nil
}

// GetOutcomes devuelve los trades con executed_at en [from, to], más antiguos primero.
func (j *SQLiteJournal) GetOutcomes(ctx context.Context, from, to time.Time) ([]domain.TradeOutcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, trigger_id, triangle_key, pair, direction, edge, notional, pnl, mode, executed_at
		FROM trades
		WHERE executed_at BETWEEN ? AND ?
		ORDER BY executed_at ASC, rowid ASC
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("storage.GetOutcomes: query: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeOutcome
	for rows.Next() {
		var o domain.TradeOutcome
		var dir, mode string
		var ms int64
		if err := rows.Scan(
			&o.ID, &o.TriggerID, &o.TriangleKey, &o.Pair, &dir,
			&o.Edge, &o.NotionalSize, &o.RealizedPnL, &mode, &ms,
		); err != nil {
			return nil, fmt.Errorf("storage.GetOutcomes: scan row: %w", err)
		}
		o.Direction = parseDirection(dir)
		o.Mode = domain.Mode(mode)
		o.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

// CountAborts devuelve cuántos aborts se registraron en [from, to].
func (j *SQLiteJournal) CountAborts(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM aborts WHERE aborted_at BETWEEN ? AND ?`,
		from.UnixMilli(), to.UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage.CountAborts: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// --- helpers internos ---

// pruneOld elimina aborts antiguos. Los trades no se tocan.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().Add(-retentionAborts).UnixMilli()
	j.db.ExecContext(ctx, `DELETE FROM aborts WHERE aborted_at < ?`, cutoff)
}

// formatCancels serializa los resultados como "SYMBOL=KIND;...".
func formatCancels(cs []domain.CancelResult) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Symbol + "=" + string(c.Kind)
	}
	return strings.Join(parts, ";")
}

func parseDirection(s string) domain.Direction {
	if s == domain.Reverse.String() {
		return domain.Reverse
	}
	return domain.Forward
}
