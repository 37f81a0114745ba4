// Package entry turns what the user typed into ledger rows.
//
// A single submission becomes one or two rows: a split bill adds a
// Receivables row for the part fronted for others. Validation happens here,
// before anything reaches a store, so a rejected request writes nothing.
package entry

import (
	"strings"

	"keuangan/internal/core"
)

const (
	MyPartSuffix      = "(My Part)"
	ReceivablesSuffix = "(Piutang)"
)

type (
	// Request holds the raw form selections.
	Request struct {
		Date        core.Date
		Type        core.TxType
		Category    string // Expense only; forced for Income and Transfer
		Source      string
		Destination string
		Amount      core.Money
		Note        string

		// Split divides an Expense between the owner and others.
		Split *Split
		// Saving tags a Transfer with the Savings category.
		Saving bool
		// DebtRepayment tags an Income as Receivables, offsetting money
		// previously fronted.
		DebtRepayment bool
	}

	Split struct {
		TotalBill core.Money
		MyPart    core.Money
	}

	// Builder validates requests against the configured plan.
	Builder struct {
		plan *core.Plan
	}
)

func NewBuilder(plan *core.Plan) *Builder {
	return &Builder{plan: plan}
}

// Build returns the rows to append, in append order.
func (b *Builder) Build(req Request) ([]core.Transaction, error) {
	if err := req.Date.Validate(); err != nil {
		return nil, invalid("date", err)
	}
	note := strings.TrimSpace(req.Note)

	switch req.Type {
	case core.Expense:
		return b.buildExpense(req, note)
	case core.Income:
		if req.Split != nil {
			return nil, invalid("split", core.ErrInvalidSplit)
		}
		return b.buildIncome(req, note)
	case core.Transfer:
		if req.Split != nil {
			return nil, invalid("split", core.ErrInvalidSplit)
		}
		return b.buildTransfer(req, note)
	}
	return nil, invalid("type", core.ErrInvalidType)
}

func (b *Builder) buildExpense(req Request, note string) ([]core.Transaction, error) {
	src, err := b.account("source", req.Source)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	c, ok := b.plan.Category(category)
	if !ok || !expenseKind(c.Kind) {
		return nil, invalid("category", core.ErrUnknownCategory)
	}

	base := core.Transaction{
		Date:        req.Date,
		Type:        core.Expense,
		Category:    c.Name,
		Source:      src,
		Destination: core.NoAccount,
		Note:        note,
	}

	if req.Split == nil {
		if err := req.Amount.Validate(); err != nil {
			return nil, invalid("amount", err)
		}
		base.Amount = req.Amount
		return []core.Transaction{base}, nil
	}

	total, mine := req.Split.TotalBill, req.Split.MyPart
	if total.Validate() != nil || mine.Validate() != nil || mine.Minor > total.Minor {
		return nil, invalid("split", core.ErrInvalidSplit)
	}
	own := base
	own.Amount = mine
	own.Note = withSuffix(note, MyPartSuffix)
	rows := []core.Transaction{own}

	// No zero-amount receivable when the owner paid for themselves only.
	if rest := total.Sub(mine); rest.Minor > 0 {
		fronted := base
		fronted.Category = core.CategoryReceivables
		fronted.Amount = rest
		fronted.Note = withSuffix(note, ReceivablesSuffix)
		rows = append(rows, fronted)
	}
	return rows, nil
}

func (b *Builder) buildIncome(req Request, note string) ([]core.Transaction, error) {
	dst, err := b.account("destination", req.Destination)
	if err != nil {
		return nil, err
	}
	if err := req.Amount.Validate(); err != nil {
		return nil, invalid("amount", err)
	}
	category := core.CategoryIncome
	if req.DebtRepayment {
		category = core.CategoryReceivables
	}
	return []core.Transaction{{
		Date:        req.Date,
		Type:        core.Income,
		Category:    category,
		Source:      core.NoAccount,
		Destination: dst,
		Amount:      req.Amount,
		Note:        note,
	}}, nil
}

func (b *Builder) buildTransfer(req Request, note string) ([]core.Transaction, error) {
	src, err := b.account("source", req.Source)
	if err != nil {
		return nil, err
	}
	dst, err := b.account("destination", req.Destination)
	if err != nil {
		return nil, err
	}
	if err := req.Amount.Validate(); err != nil {
		return nil, invalid("amount", err)
	}
	category := core.CategoryTransfer
	if req.Saving {
		category = b.plan.SavingsCategory()
	}
	return []core.Transaction{{
		Date:        req.Date,
		Type:        core.Transfer,
		Category:    category,
		Source:      src,
		Destination: dst,
		Amount:      req.Amount,
		Note:        note,
	}}, nil
}

func (b *Builder) account(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == core.NoAccount {
		return "", invalid(field, core.ErrMissingAccount)
	}
	if !b.plan.HasAccount(name) {
		return "", invalid(field, core.ErrUnknownAccount)
	}
	return name, nil
}

func expenseKind(k core.CategoryKind) bool {
	switch k {
	case core.KindBudget, core.KindSavings, core.KindReceivables, core.KindOther:
		return true
	}
	return false
}

func withSuffix(note, suffix string) string {
	if note == "" {
		return suffix
	}
	return note + " " + suffix
}

func invalid(field string, err error) error {
	return &core.ValidationError{Field: field, Err: err}
}
