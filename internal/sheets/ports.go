package sheets

import (
	"context"
	"errors"
	"fmt"

	"keuangan/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerReader returns every stored row in storage order. An empty store
	// yields an empty ledger, never an error.
	LedgerReader interface {
		Load(ctx context.Context) (core.Ledger, error)
	}

	// LedgerWriter appends rows in the given order, writing the header first
	// when the store has no rows at all.
	LedgerWriter interface {
		Append(ctx context.Context, txs ...core.Transaction) error
	}

	LedgerStore interface {
		LedgerReader
		LedgerWriter
		Close() error
	}
)

// ErrBackingStoreUnavailable is wrapped by every backend when the store
// cannot be located, opened or reached.
var ErrBackingStoreUnavailable = errors.New("backing store unavailable")

// Unavailable wraps err so that errors.Is matches ErrBackingStoreUnavailable.
func Unavailable(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrBackingStoreUnavailable, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrBackingStoreUnavailable, what, err)
}

// PartialWriteError reports a multi-row append that landed only its first
// Written rows. Nothing is rolled back.
type PartialWriteError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d of %d rows appended: %v", e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
