package services

import (
	"context"
	"errors"
	"fmt"

	"keuangan/internal/amqp"
	"keuangan/internal/auth"
	"keuangan/internal/core"
	"keuangan/internal/entry"
	applog "keuangan/internal/log"
	ports "keuangan/internal/sheets"
)

// ErrUnauthenticated is returned for any operation on a session that has not
// logged in. No store is touched.
var ErrUnauthenticated = errors.New("unauthenticated")

// Publisher announces appended rows. *amqp.Client satisfies it.
type Publisher interface {
	PublishLedgerAppended(ctx context.Context, msg *amqp.LedgerAppendedMessage) error
}

// Dashboard is everything the overview page shows, computed from one load.
type Dashboard struct {
	Balances       []core.AccountBalance
	NetWorth       core.Money
	Summary        core.MonthlySummary
	NetReceivables core.Money
	Skipped        []core.RowError
}

// LedgerService is the authenticated entry point to the ledger. Every read
// reloads the store and recomputes from scratch.
type LedgerService struct {
	store     ports.LedgerStore
	plan      *core.Plan
	builder   *entry.Builder
	publisher Publisher
	logger    *applog.Logger
}

// NewLedgerService wires the service. publisher may be nil.
func NewLedgerService(store ports.LedgerStore, plan *core.Plan, publisher Publisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerService{
		store:     store,
		plan:      plan,
		builder:   entry.NewBuilder(plan),
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentLedger),
	}
}

func (s *LedgerService) Plan() *core.Plan { return s.plan }

// Submit validates the request, appends the resulting rows and announces
// them. Publishing is best effort: the rows are already stored.
func (s *LedgerService) Submit(ctx context.Context, sess auth.Session, req entry.Request) ([]core.Transaction, error) {
	if !sess.Authenticated {
		return nil, ErrUnauthenticated
	}
	txs, err := s.builder.Build(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Append(ctx, txs...); err != nil {
		s.logger.ErrorContext(ctx, "Append failed",
			applog.FieldOperation, applog.OpAppend,
			applog.FieldRows, len(txs),
			applog.FieldErrorType, errorType(err),
			applog.FieldError, err)
		// The rows that landed are in the primary store; the mirror gets them too.
		var pw *ports.PartialWriteError
		if errors.As(err, &pw) && pw.Written > 0 {
			s.publish(ctx, txs[:min(pw.Written, len(txs))])
		}
		return nil, fmt.Errorf("append: %w", err)
	}

	rows := make([]applog.LogFields, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, applog.NewFields().WithTransaction(
			t.Date.String(), string(t.Type), t.Category, t.Source, t.Destination, t.Amount.Minor))
	}
	applog.NewStructuredLogger(s.logger).LogTransactionsAppended(ctx, rows)

	s.publish(ctx, txs)
	return txs, nil
}

func (s *LedgerService) publish(ctx context.Context, txs []core.Transaction) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerAppendedMessage(txs)
	if err := s.publisher.PublishLedgerAppended(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish appended rows",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventID, msg.EventID,
			applog.FieldError, err)
	}
}

// Balances returns the lifetime balance of every configured account.
func (s *LedgerService) Balances(ctx context.Context, sess auth.Session) ([]core.AccountBalance, error) {
	txs, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return core.Balances(txs, s.plan.Accounts()), nil
}

func (s *LedgerService) NetWorth(ctx context.Context, sess auth.Session) (core.Money, error) {
	txs, err := s.load(ctx, sess)
	if err != nil {
		return core.Money{}, err
	}
	return core.NetWorth(txs, s.plan.Accounts()), nil
}

func (s *LedgerService) MonthlySummary(ctx context.Context, sess auth.Session, year, month int) (core.MonthlySummary, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return core.MonthlySummary{}, &core.ValidationError{Field: "period", Err: fmt.Errorf("%w: %v", core.ErrInvalidDate, err)}
	}
	txs, err := s.load(ctx, sess)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.Summarize(txs, s.plan, year, month), nil
}

// Transactions lists rows in storage order, optionally restricted to a month.
// Split halves stay adjacent; views that want newest first sort themselves.
func (s *LedgerService) Transactions(ctx context.Context, sess auth.Session, filter *core.Period) ([]core.Transaction, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, &core.ValidationError{Field: "period", Err: fmt.Errorf("%w: %v", core.ErrInvalidDate, err)}
		}
	}
	txs, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		txs = core.FilterMonth(txs, filter.Year, filter.Month)
	}
	return txs, nil
}

func (s *LedgerService) Dashboard(ctx context.Context, sess auth.Session, year, month int) (Dashboard, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Dashboard{}, &core.ValidationError{Field: "period", Err: fmt.Errorf("%w: %v", core.ErrInvalidDate, err)}
	}
	if !sess.Authenticated {
		return Dashboard{}, ErrUnauthenticated
	}
	ledger, err := s.loadLedger(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	txs := ledger.Transactions
	accounts := s.plan.Accounts()
	return Dashboard{
		Balances:       core.Balances(txs, accounts),
		NetWorth:       core.NetWorth(txs, accounts),
		Summary:        core.Summarize(txs, s.plan, year, month),
		NetReceivables: core.NetReceivables(txs),
		Skipped:        ledger.Skipped,
	}, nil
}

// Ready loads the ledger once without a session, for readiness probes.
func (s *LedgerService) Ready(ctx context.Context) error {
	_, err := s.loadLedger(ctx)
	return err
}

func (s *LedgerService) load(ctx context.Context, sess auth.Session) ([]core.Transaction, error) {
	if !sess.Authenticated {
		return nil, ErrUnauthenticated
	}
	ledger, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Transactions, nil
}

func (s *LedgerService) loadLedger(ctx context.Context) (core.Ledger, error) {
	ledger, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Load failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldErrorType, errorType(err),
			applog.FieldError, err)
		return core.Ledger{}, fmt.Errorf("load: %w", err)
	}
	for _, re := range ledger.Skipped {
		s.logger.WarnContext(ctx, "Skipped unreadable row",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldRow, re.Row,
			applog.FieldError, re.Err)
	}
	return ledger, nil
}

func errorType(err error) string {
	var pw *ports.PartialWriteError
	switch {
	case core.IsValidation(err):
		return applog.ErrorTypeValidation
	case errors.Is(err, ports.ErrBackingStoreUnavailable):
		return applog.ErrorTypeUnavailable
	case errors.As(err, &pw):
		return applog.ErrorTypePartialWrite
	}
	return applog.ErrorTypeInternal
}

// Close releases the store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
