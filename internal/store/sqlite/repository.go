package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.TransactionStore = (*Repository)(nil)

const selectColumns = `id, text, amount, category, date`

// Repository stores transactions in a shared-cache in-memory SQLite database.
// The database lives as long as the repository keeps its connection open.
type Repository struct {
	db  *sql.DB
	now store.Clock
}

// DSN returns the connection string of the in-memory database called name.
func DSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared"
}

// NewRepository opens the in-memory database called name and applies the schema.
func NewRepository(name string, now store.Clock) (*Repository, error) {
	if name == "" {
		return nil, errors.New("sqlite database name cannot be empty")
	}
	if now == nil {
		now = time.Now
	}
	dsn := DSN(name)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single long-lived connection keeps the in-memory database alive and
	// serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, now: now}, nil
}

// Close releases the connection; the in-memory data is gone afterwards.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Seed inserts records with their own ids. Used for sample data on startup.
func (r *Repository) Seed(ctx context.Context, txs []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, t := range txs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, text, amount, category, date) VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Text, t.Amount, t.Category, t.Date); err != nil {
			return fmt.Errorf("seed transaction %d: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	storageLogger(ctx).InfoContext(ctx, "Seeded SQLite store", "count", len(txs))
	return nil
}

// List implements store.TransactionStore
func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert implements store.TransactionStore
func (r *Repository) Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	in = in.WithDefaultDate(r.now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM transactions`).Scan(&id); err != nil {
		return core.Transaction{}, fmt.Errorf("next transaction id: %w", err)
	}

	created, err := scanTransaction(tx.QueryRowContext(ctx,
		`INSERT INTO transactions (id, text, amount, category, date) VALUES (?, ?, ?, ?, ?) RETURNING `+selectColumns,
		id, in.Text, in.Amount, in.Category, in.Date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit insert: %w", err)
	}

	storageLogger(ctx).DebugContext(ctx, "Transaction saved to SQLite",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTxID, created.ID,
		applog.FieldAmount, created.Amount)
	return created, nil
}

// Update implements store.TransactionStore
func (r *Repository) Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	updated, err := scanTransaction(r.db.QueryRowContext(ctx,
		`UPDATE transactions SET text = ?, amount = ?, category = ?, date = ? WHERE id = ? RETURNING `+selectColumns,
		in.Text, in.Amount, in.Category, in.Date, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return updated, nil
}

// Delete implements store.TransactionStore
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		storageLogger(ctx).DebugContext(ctx, "Delete matched no transaction",
			applog.FieldOperation, applog.OpDelete, applog.FieldTxID, id)
	}
	return nil
}

func storageLogger(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentStorage)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.Text, &t.Amount, &t.Category, &t.Date)
	return t, err
}
