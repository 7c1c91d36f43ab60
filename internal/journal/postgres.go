package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const createTable = `
CREATE TABLE IF NOT EXISTS operation_journal (
	id          UUID PRIMARY KEY,
	operation   TEXT NOT NULL,
	merchant_id TEXT NOT NULL,
	order_key   TEXT NOT NULL,
	trace_id    TEXT NOT NULL,
	successful  BOOLEAN NOT NULL,
	code        TEXT NOT NULL,
	message     TEXT NOT NULL,
	synthesized BOOLEAN NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
)`

// PostgresRecorder stores entries in the operation_journal table through the
// pgx database/sql driver.
type PostgresRecorder struct {
	db  *sql.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and makes sure the journal table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: ping database: %w", err)
	}
	r := &PostgresRecorder{db: db, now: time.Now}
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("journal: create table: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	e = prepare(e, r.now)
	query := `INSERT INTO operation_journal
		(id, operation, merchant_id, order_key, trace_id, successful, code, message, synthesized, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Operation, e.MerchantID, e.OrderKey, e.TraceID,
		e.Successful, e.Code, e.Message, e.Synthesized, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("journal: insert entry: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) List(ctx context.Context) ([]Entry, error) {
	query := `SELECT id, operation, merchant_id, order_key, trace_id, successful, code, message, synthesized, recorded_at
		FROM operation_journal ORDER BY recorded_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("journal: list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Operation, &e.MerchantID, &e.OrderKey, &e.TraceID,
			&e.Successful, &e.Code, &e.Message, &e.Synthesized, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}
