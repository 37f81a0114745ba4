package core

import "fmt"

// Ledger is a read-only snapshot of the store: every row that parsed, in
// storage order, plus the rows that did not.
type Ledger struct {
	Transactions []Transaction
	Skipped      []RowError
}

// RowError describes a stored row that could not be read. Row is 1-based and
// counts the header, matching what a spreadsheet user sees.
type RowError struct {
	Row int
	Raw []string
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// AccountBalance is the lifetime balance of one configured account.
type AccountBalance struct {
	Account string
	Balance Money
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// CategoryConsumption is one budget line for a month.
type CategoryConsumption struct {
	Category  Category
	Spent     Money
	Remaining Money   // allotment - spent, may go negative
	Percent   float64 // spent/allotment clamped to [0,1]; 0 when allotment is 0
}

// MonthlySummary is the budget picture for a specific year+month.
type MonthlySummary struct {
	Year        int
	Month       int // 1-12
	Categories  []CategoryConsumption
	TotalBudget Money
	TotalSpent  Money
	Remaining   Money

	// ReceivablesOutstanding is money fronted for others this month. It is an
	// asset, reported beside spending and never subtracted from it.
	ReceivablesOutstanding Money
	ReceivablesRepaid      Money

	// Unplanned lists consumption under categories absent from the plan,
	// such as retired historical names. Not part of any total.
	Unplanned []CategoryAmount
}
