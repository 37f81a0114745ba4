package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"keuangan/internal/core"
	ports "keuangan/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the ledger store backed by a local SQLite file. Rows
// come back in insertion order; there is no header row to manage.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ports.LedgerStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, ports.Unavailable("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ports.Unavailable("open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ports.Unavailable("ping database", err)
	}

	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	slog.Debug("SQLite ledger schema ready", "path", dbPath, "version", version)

	return newRepository(db), nil
}

func newRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, queries: New(db)}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements sheets.LedgerReader. Rows are decoded with the same rules
// as spreadsheet rows; the row number reported for a bad row is its id.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Ledger, error) {
	items, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("list transactions: %w", err)
	}
	var l core.Ledger
	for _, it := range items {
		raw := []string{
			it.Date,
			it.Type,
			it.Category,
			it.SourceAccount,
			it.DestinationAccount,
			strconv.FormatInt(it.Amount, 10),
			it.Note,
		}
		t, err := ports.DecodeRow(raw, nil)
		if err != nil {
			l.Skipped = append(l.Skipped, core.RowError{Row: int(it.ID), Raw: raw, Err: err})
			continue
		}
		l.Transactions = append(l.Transactions, t)
	}
	return l, nil
}

// Append implements sheets.LedgerWriter. All rows share one SQL transaction,
// so a split bill lands whole or not at all.
func (r *SQLiteRepository) Append(ctx context.Context, txs ...core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	ids := make([]int64, 0, len(txs))
	for _, t := range txs {
		row := ports.EncodeStrings(t)
		id, err := q.InsertTransaction(ctx, InsertTransactionParams{
			Date:               row[0],
			Type:               row[1],
			Category:           row[2],
			SourceAccount:      row[3],
			DestinationAccount: row[4],
			Amount:             t.Amount.Minor,
			Note:               row[6],
		})
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Transactions saved to SQLite", "ids", ids)
	return nil
}
