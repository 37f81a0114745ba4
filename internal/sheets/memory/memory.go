package memory

import (
	"context"
	"sync"

	"keuangan/internal/core"
	ports "keuangan/internal/sheets"
)

// Store keeps the ledger in process memory. It is always available.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ ports.LedgerStore = (*Store)(nil)

// New returns a store seeded with rows, kept in the given order.
func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

func (s *Store) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Ledger{Transactions: append([]core.Transaction(nil), s.items...)}, nil
}

// Append validates every row before storing any of them.
func (s *Store) Append(_ context.Context, txs ...core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txs...)
	return nil
}

func (s *Store) Close() error { return nil }

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
