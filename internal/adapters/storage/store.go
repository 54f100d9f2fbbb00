package storage

// store.go: histórico de backtests en SQL.
//
//   - `summaries`: una fila por ejecución (run_id único).
//   - `trades`: una fila por trade simulado, enlazada por run_id.
//
// Los timestamps se guardan como epoch en milisegundos para que el mismo
// código sirva en SQLite (por defecto, pure Go) y en Postgres.

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS summaries (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     TEXT    NOT NULL UNIQUE,
    created_at INTEGER NOT NULL,
    symbol     TEXT    NOT NULL,
    timeframe  TEXT    NOT NULL DEFAULT '',
    total      INTEGER NOT NULL DEFAULT 0,
    tp         INTEGER NOT NULL DEFAULT 0,
    sl         INTEGER NOT NULL DEFAULT 0,
    net_pips   REAL    NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT    NOT NULL,
    opened_at   INTEGER NOT NULL,
    symbol      TEXT    NOT NULL,
    direction   TEXT    NOT NULL,
    price       REAL    NOT NULL,
    stop_loss   REAL    NOT NULL,
    take_profit REAL    NOT NULL,
    result      TEXT    NOT NULL,
    signal_type TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_at ON summaries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS summaries (
    id         BIGSERIAL PRIMARY KEY,
    run_id     TEXT    NOT NULL UNIQUE,
    created_at BIGINT  NOT NULL,
    symbol     TEXT    NOT NULL,
    timeframe  TEXT    NOT NULL DEFAULT '',
    total      INTEGER NOT NULL DEFAULT 0,
    tp         INTEGER NOT NULL DEFAULT 0,
    sl         INTEGER NOT NULL DEFAULT 0,
    net_pips   DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT   NOT NULL,
    opened_at   BIGINT NOT NULL,
    symbol      TEXT   NOT NULL,
    direction   TEXT   NOT NULL,
    price       DOUBLE PRECISION NOT NULL,
    stop_loss   DOUBLE PRECISION NOT NULL,
    take_profit DOUBLE PRECISION NOT NULL,
    result      TEXT   NOT NULL,
    signal_type TEXT   NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_at ON summaries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id);
`

var schemas = map[string]string{
	DriverSQLite:   sqliteSchema,
	DriverPostgres: postgresSchema,
}

func init() {
	// modernc registra "sqlite", que sqlx no conoce por defecto.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type tradeRow struct {
	RunID      string  `db:"run_id"`
	OpenedAt   int64   `db:"opened_at"`
	Symbol     string  `db:"symbol"`
	Direction  string  `db:"direction"`
	Price      float64 `db:"price"`
	StopLoss   float64 `db:"stop_loss"`
	TakeProfit float64 `db:"take_profit"`
	Result     string  `db:"result"`
	SignalType string  `db:"signal_type"`
}

type summaryRow struct {
	RunID     string  `db:"run_id"`
	CreatedAt int64   `db:"created_at"`
	Symbol    string  `db:"symbol"`
	Timeframe string  `db:"timeframe"`
	Total     int     `db:"total"`
	TP        int     `db:"tp"`
	SL        int     `db:"sl"`
	NetPips   float64 `db:"net_pips"`
}

// SQLStore implementa ports.ResultStore, ports.SummaryHistory y ports.TradeHistory
// sobre SQLite (modernc, sin CGo) o Postgres (lib/pq).
type SQLStore struct {
	db *sqlx.DB
}

// Open abre (o crea) la base de datos y aplica el schema.
// driver es "sqlite" o "postgres"; para sqlite dsn es una ruta o ":memory:".
func Open(driver, dsn string) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("storage.Open: unsupported driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite es single-writer
		db.SetMaxIdleConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: apply schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// SaveTrades inserta los trades de una ejecución en una sola transacción.
func (s *SQLStore) SaveTrades(ctx context.Context, trades []ports.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, tradeRow{
			RunID:      t.RunID,
			OpenedAt:   t.Timestamp.UnixMilli(),
			Symbol:     t.Symbol,
			Direction:  string(t.Direction),
			Price:      t.Price,
			StopLoss:   t.StopLoss,
			TakeProfit: t.TakeProfit,
			Result:     string(t.Result),
			SignalType: string(t.SignalType),
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrades: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO trades
			(run_id, opened_at, symbol, direction, price, stop_loss, take_profit, result, signal_type)
		VALUES
			(:run_id, :opened_at, :symbol, :direction, :price, :stop_loss, :take_profit, :result, :signal_type)
	`, rows); err != nil {
		return fmt.Errorf("storage.SaveTrades: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrades: commit: %w", err)
	}
	return nil
}

// SaveSummary inserta el resumen de una ejecución.
func (s *SQLStore) SaveSummary(ctx context.Context, r ports.SummaryRecord) error {
	row := summaryRow{
		RunID:     r.RunID,
		CreatedAt: r.Timestamp.UnixMilli(),
		Symbol:    r.Symbol,
		Timeframe: r.Interval,
		Total:     r.Summary.Total,
		TP:        r.Summary.TPCount,
		SL:        r.Summary.SLCount,
		NetPips:   r.Summary.NetPips,
	}
	if _, err := s.db.NamedExecContext(ctx, `
		INSERT INTO summaries (run_id, created_at, symbol, timeframe, total, tp, sl, net_pips)
		VALUES (:run_id, :created_at, :symbol, :timeframe, :total, :tp, :sl, :net_pips)
	`, row); err != nil {
		return fmt.Errorf("storage.SaveSummary: insert %s: %w", r.RunID, err)
	}
	return nil
}

// RecentSummaries devuelve los últimos limit resúmenes, los más recientes primero.
func (s *SQLStore) RecentSummaries(ctx context.Context, limit int) ([]ports.SummaryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []summaryRow
	query := s.db.Rebind(`
		SELECT run_id, created_at, symbol, timeframe, total, tp, sl, net_pips
		FROM summaries
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("storage.RecentSummaries: query: %w", err)
	}

	out := make([]ports.SummaryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.SummaryRecord{
			RunID:     r.RunID,
			Timestamp: time.UnixMilli(r.CreatedAt).UTC(),
			Symbol:    r.Symbol,
			Interval:  r.Timeframe,
			Summary: domain.Summary{
				Total:   r.Total,
				TPCount: r.TP,
				SLCount: r.SL,
				NetPips: r.NetPips,
			},
		})
	}
	return out, nil
}

// RunTrades devuelve los trades de una ejecución en orden de entrada.
func (s *SQLStore) RunTrades(ctx context.Context, runID string) ([]ports.TradeRecord, error) {
	var rows []tradeRow
	query := s.db.Rebind(`
		SELECT run_id, opened_at, symbol, direction, price, stop_loss, take_profit, result, signal_type
		FROM trades
		WHERE run_id = ?
		ORDER BY opened_at, id
	`)
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("storage.RunTrades: query: %w", err)
	}

	out := make([]ports.TradeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.TradeRecord{
			RunID:      r.RunID,
			Timestamp:  time.UnixMilli(r.OpenedAt).UTC(),
			Symbol:     r.Symbol,
			Direction:  domain.Direction(r.Direction),
			Price:      r.Price,
			StopLoss:   r.StopLoss,
			TakeProfit: r.TakeProfit,
			Result:     domain.Result(r.Result),
			SignalType: domain.SignalType(r.SignalType),
		})
	}
	return out, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
