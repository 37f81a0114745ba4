package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors the transactions table. Date stays text so that
// imported rows in other formats survive until decode.
type TransactionRow struct {
	ID                 int64
	Date               string
	Type               string
	Category           string
	SourceAccount      string
	DestinationAccount string
	Amount             int64
	Note               string
}

const insertTransaction = `INSERT INTO transactions (date, type, category, source_account, destination_account, amount, note)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	Date               string
	Type               string
	Category           string
	SourceAccount      string
	DestinationAccount string
	Amount             int64
	Note               string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertTransaction,
		arg.Date,
		arg.Type,
		arg.Category,
		arg.SourceAccount,
		arg.DestinationAccount,
		arg.Amount,
		arg.Note,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listTransactions = `SELECT id, date, type, category, source_account, destination_account, amount, note
FROM transactions
ORDER BY id`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Type,
			&i.Category,
			&i.SourceAccount,
			&i.DestinationAccount,
			&i.Amount,
			&i.Note,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
