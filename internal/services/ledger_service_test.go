package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"keuangan/internal/amqp"
	"keuangan/internal/auth"
	"keuangan/internal/core"
	"keuangan/internal/entry"
	applog "keuangan/internal/log"
	ports "keuangan/internal/sheets"
	"keuangan/internal/sheets/memory"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context) (core.Ledger, error) {
	args := m.Called(ctx)
	return args.Get(0).(core.Ledger), args.Error(1)
}

func (m *mockStore) Append(ctx context.Context, txs ...core.Transaction) error {
	args := m.Called(ctx, txs)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishLedgerAppended(ctx context.Context, msg *amqp.LedgerAppendedMessage) error {
	return m.Called(ctx, msg).Error(0)
}

var (
	loggedIn  = auth.Session{ID: "s1", Authenticated: true}
	anonymous = auth.Anonymous()
)

func testPlan(t *testing.T) *core.Plan {
	t.Helper()
	plan, err := core.NewPlan([]string{"BCA", "Cash", "Tabungan"}, []core.Category{
		{Name: "Food", Allotment: core.Money{Minor: 1000000}},
		{Name: "Transport", Allotment: core.Money{Minor: 200000}},
		{Name: core.CategorySavings, Allotment: core.Money{Minor: 500000}},
	})
	require.NoError(t, err)
	return plan
}

func bufferLogger() (*applog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}), &buf
}

func mustRow(t *testing.T, typ core.TxType, day int, category, src, dst string, amount int64) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date: core.NewDate(2024, 3, day), Type: typ, Category: category,
		Source: src, Destination: dst, Amount: core.Money{Minor: amount},
	}
}

func TestUnauthenticatedNeverTouchesStore(t *testing.T) {
	store := &mockStore{}
	svc := NewLedgerService(store, testPlan(t), nil, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, anonymous, entry.Request{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Balances(ctx, anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.NetWorth(ctx, anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.MonthlySummary(ctx, anonymous, 2024, 3)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Transactions(ctx, anonymous, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Dashboard(ctx, anonymous, 2024, 3)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	store.AssertNotCalled(t, "Load", mock.Anything)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitSplitAppendsBothRowsAndPublishes(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := NewLedgerService(store, testPlan(t), pub, nil)
	ctx := context.Background()

	store.On("Append", ctx, mock.MatchedBy(func(txs []core.Transaction) bool {
		return len(txs) == 2 && txs[0].Amount.Minor == 60000 && txs[1].Category == core.CategoryReceivables
	})).Return(nil).Once()
	pub.On("PublishLedgerAppended", ctx, mock.MatchedBy(func(m *amqp.LedgerAppendedMessage) bool {
		return len(m.Rows) == 2 && m.EventID != ""
	})).Return(nil).Once()

	txs, err := svc.Submit(ctx, loggedIn, entry.Request{
		Date:     core.NewDate(2024, 3, 5),
		Type:     core.Expense,
		Category: "Food",
		Source:   "BCA",
		Note:     "Lunch",
		Split:    &entry.Split{TotalBill: core.Money{Minor: 100000}, MyPart: core.Money{Minor: 60000}},
	})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmitInvalidWritesNothing(t *testing.T) {
	store := &mockStore{}
	svc := NewLedgerService(store, testPlan(t), nil, nil)

	_, err := svc.Submit(context.Background(), loggedIn, entry.Request{
		Date: core.NewDate(2024, 3, 5), Type: core.Expense, Category: "Food", Source: "Nowhere",
		Amount: core.Money{Minor: 10},
	})
	assert.True(t, core.IsValidation(err))
	assert.ErrorIs(t, err, core.ErrUnknownAccount)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitPublishFailureIsNotFatal(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	logger, buf := bufferLogger()
	svc := NewLedgerService(store, testPlan(t), pub, logger)
	ctx := context.Background()

	store.On("Append", ctx, mock.Anything).Return(nil)
	pub.On("PublishLedgerAppended", ctx, mock.Anything).Return(errors.New("broker down"))

	txs, err := svc.Submit(ctx, loggedIn, entry.Request{
		Date: core.NewDate(2024, 3, 5), Type: core.Income, Destination: "BCA", Amount: core.Money{Minor: 5000000},
	})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Contains(t, buf.String(), "Failed to publish appended rows")
}

func TestSubmitStoreErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "unavailable",
			err:  ports.Unavailable("spreadsheet", nil),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ports.ErrBackingStoreUnavailable)
			},
		},
		{
			name: "partial write with nothing landed",
			err:  &ports.PartialWriteError{Written: 0, Total: 1, Err: errors.New("quota")},
			check: func(t *testing.T, err error) {
				var pw *ports.PartialWriteError
				require.ErrorAs(t, err, &pw)
				assert.Equal(t, 0, pw.Written)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			pub := &mockPublisher{}
			svc := NewLedgerService(store, testPlan(t), pub, nil)
			store.On("Append", mock.Anything, mock.Anything).Return(tt.err)

			_, err := svc.Submit(context.Background(), loggedIn, entry.Request{
				Date: core.NewDate(2024, 3, 5), Type: core.Expense, Category: "Food", Source: "BCA",
				Amount: core.Money{Minor: 100},
			})
			tt.check(t, err)
			pub.AssertNotCalled(t, "PublishLedgerAppended", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitPartialWritePublishesLandedRows(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := NewLedgerService(store, testPlan(t), pub, nil)
	ctx := context.Background()

	store.On("Append", ctx, mock.Anything).
		Return(&ports.PartialWriteError{Written: 1, Total: 2, Err: errors.New("quota")}).Once()
	pub.On("PublishLedgerAppended", ctx, mock.MatchedBy(func(m *amqp.LedgerAppendedMessage) bool {
		return len(m.Rows) == 1 && m.Rows[0].Amount == 60000 && m.Rows[0].Category == "Food"
	})).Return(nil).Once()

	_, err := svc.Submit(ctx, loggedIn, entry.Request{
		Date:     core.NewDate(2024, 3, 5),
		Type:     core.Expense,
		Category: "Food",
		Source:   "BCA",
		Split:    &entry.Split{TotalBill: core.Money{Minor: 100000}, MyPart: core.Money{Minor: 60000}},
	})
	var pw *ports.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 1, pw.Written)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReadsRecomputeFromStore(t *testing.T) {
	store := memory.New(
		mustRow(t, core.Income, 1, core.CategoryIncome, core.NoAccount, "BCA", 5000000),
		mustRow(t, core.Expense, 2, "Food", "BCA", core.NoAccount, 60000),
		mustRow(t, core.Expense, 2, core.CategoryReceivables, "BCA", core.NoAccount, 40000),
		mustRow(t, core.Transfer, 3, core.CategorySavings, "BCA", "Tabungan", 500000),
		mustRow(t, core.Income, 4, core.CategoryReceivables, core.NoAccount, "Cash", 40000),
	)
	svc := NewLedgerService(store, testPlan(t), nil, nil)
	ctx := context.Background()

	balances, err := svc.Balances(ctx, loggedIn)
	require.NoError(t, err)
	assert.Equal(t, []core.AccountBalance{
		{Account: "BCA", Balance: core.Money{Minor: 4400000}},
		{Account: "Cash", Balance: core.Money{Minor: 40000}},
		{Account: "Tabungan", Balance: core.Money{Minor: 500000}},
	}, balances)

	nw, err := svc.NetWorth(ctx, loggedIn)
	require.NoError(t, err)
	assert.Equal(t, int64(4940000), nw.Minor)

	summary, err := svc.MonthlySummary(ctx, loggedIn, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(560000), summary.TotalSpent.Minor)
	assert.Equal(t, int64(40000), summary.ReceivablesOutstanding.Minor)

	require.NoError(t, store.Append(ctx, mustRow(t, core.Expense, 6, "Transport", "Cash", core.NoAccount, 20000)))
	nw, err = svc.NetWorth(ctx, loggedIn)
	require.NoError(t, err)
	assert.Equal(t, int64(4920000), nw.Minor)
}

func TestTransactionsFilterAndOrder(t *testing.T) {
	store := memory.New(
		mustRow(t, core.Expense, 2, "Food", "BCA", core.NoAccount, 1),
		core.Transaction{Date: core.NewDate(2024, 4, 1), Type: core.Expense, Category: "Food", Source: "BCA", Destination: core.NoAccount, Amount: core.Money{Minor: 2}},
		mustRow(t, core.Expense, 9, "Food", "BCA", core.NoAccount, 3),
	)
	svc := NewLedgerService(store, testPlan(t), nil, nil)
	ctx := context.Background()

	all, err := svc.Transactions(ctx, loggedIn, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Amount.Minor, all[1].Amount.Minor, all[2].Amount.Minor},
		"rows come back in storage order, not date order")

	march, err := svc.Transactions(ctx, loggedIn, &core.Period{Year: 2024, Month: 3})
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, int64(1), march[0].Amount.Minor)
	assert.Equal(t, int64(3), march[1].Amount.Minor)

	_, err = svc.Transactions(ctx, loggedIn, &core.Period{Year: 2024, Month: 13})
	assert.True(t, core.IsValidation(err))
}

func TestDashboardLogsSkippedRows(t *testing.T) {
	store := &mockStore{}
	logger, buf := bufferLogger()
	svc := NewLedgerService(store, testPlan(t), nil, logger)
	ctx := context.Background()

	store.On("Load", ctx).Return(core.Ledger{
		Transactions: []core.Transaction{
			mustRow(t, core.Income, 1, core.CategoryIncome, core.NoAccount, "BCA", 1000),
			mustRow(t, core.Expense, 2, core.CategoryReceivables, "BCA", core.NoAccount, 300),
		},
		Skipped: []core.RowError{{Row: 4, Err: core.ErrInvalidDate}},
	}, nil).Once()

	d, err := svc.Dashboard(ctx, loggedIn, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(700), d.NetWorth.Minor)
	assert.Equal(t, int64(300), d.NetReceivables.Minor)
	assert.Len(t, d.Skipped, 1)
	assert.Len(t, d.Balances, 3)
	assert.Contains(t, buf.String(), "Skipped unreadable row")
	store.AssertExpectations(t)
}

func TestLoadUnavailable(t *testing.T) {
	store := &mockStore{}
	svc := NewLedgerService(store, testPlan(t), nil, nil)
	store.On("Load", mock.Anything).Return(core.Ledger{}, ports.Unavailable("file", nil))

	_, err := svc.Balances(context.Background(), loggedIn)
	assert.ErrorIs(t, err, ports.ErrBackingStoreUnavailable)
	assert.ErrorIs(t, svc.Ready(context.Background()), ports.ErrBackingStoreUnavailable)
}

func TestMonthlySummaryRejectsBadMonth(t *testing.T) {
	store := &mockStore{}
	svc := NewLedgerService(store, testPlan(t), nil, nil)

	_, err := svc.MonthlySummary(context.Background(), loggedIn, 2024, 0)
	assert.True(t, core.IsValidation(err))
	store.AssertNotCalled(t, "Load", mock.Anything)
}
