package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense  TxType = "Expense"
	Income   TxType = "Income"
	Transfer TxType = "Transfer"
)

// NoAccount marks the unused side of an Expense or Income row.
const NoAccount = "-"

// DateLayout is the only format written to any ledger store.
const DateLayout = "2006-01-02"

type (
	TxType string

	Date struct {
		time.Time
	}

	// Money is an amount in the currency's minor unit. Ledger math never
	// touches floats.
	Money struct {
		Minor int64
	}

	// Transaction is one immutable ledger row.
	Transaction struct {
		Date        Date
		Type        TxType
		Category    string
		Source      string // account debited, or NoAccount
		Destination string // account credited, or NoAccount
		Amount      Money
		Note        string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingAccount  = errors.New("missing account")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidSplit    = errors.New("invalid split bill")
)

// ValidationError reports which input field was rejected. Err is always one
// of the sentinel errors above.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was caused by rejected user input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Minor < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Minor: m.Minor + o.Minor} }
func (m Money) Sub(o Money) Money { return Money{Minor: m.Minor - o.Minor} }

// ParseTxType accepts the stored names case-insensitively, and form labels
// such as "Expense (Pengeluaran)" by their first word.
func ParseTxType(s string) (TxType, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ErrInvalidType
	}
	switch strings.ToLower(fields[0]) {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	case "transfer":
		return Transfer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TxType) IsValid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	}
	return false
}

// Validate checks the structural invariants every stored row must hold.
// Plan membership (known accounts and categories) is the entry builder's job,
// so historical rows with retired names still validate.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if !t.Type.IsValid() {
		return invalid("type", ErrInvalidType)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrUnknownCategory)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	src, dst := isSet(t.Source), isSet(t.Destination)
	switch t.Type {
	case Expense:
		if !src {
			return invalid("source", ErrMissingAccount)
		}
		if dst {
			return invalid("destination", fmt.Errorf("%w: expense has no destination", ErrInvalidType))
		}
	case Income:
		if !dst {
			return invalid("destination", ErrMissingAccount)
		}
		if src {
			return invalid("source", fmt.Errorf("%w: income has no source", ErrInvalidType))
		}
	case Transfer:
		if !src {
			return invalid("source", ErrMissingAccount)
		}
		if !dst {
			return invalid("destination", ErrMissingAccount)
		}
	}
	return nil
}

func isSet(account string) bool {
	account = strings.TrimSpace(account)
	return account != "" && account != NoAccount
}
