package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Minor: 0}).Validate(); err != nil {
		t.Fatalf("zero must be valid, got %v", err)
	}
	if err := (Money{Minor: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"Expense", Expense, true},
		{"income", Income, true},
		{" TRANSFER ", Transfer, true},
		{"Expense (Pengeluaran)", Expense, true},
		{"Transfer (Pindah Dana)", Transfer, true},
		{"", "", false},
		{"Refund", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTxType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	day := NewDate(2026, 1, 5)
	good := []Transaction{
		{Date: day, Type: Expense, Category: "Food", Source: "BCA", Destination: NoAccount, Amount: Money{Minor: 100}},
		{Date: day, Type: Income, Category: CategoryIncome, Source: NoAccount, Destination: "BCA", Amount: Money{Minor: 100}},
		{Date: day, Type: Transfer, Category: CategoryTransfer, Source: "BCA", Destination: "Cash", Amount: Money{Minor: 0}},
	}
	for i, tx := range good {
		if err := tx.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Type: Expense, Category: "Food", Source: "BCA", Destination: NoAccount}, ErrInvalidDate},
		{Transaction{Date: day, Type: "Refund", Category: "Food", Source: "BCA"}, ErrInvalidType},
		{Transaction{Date: day, Type: Expense, Category: "", Source: "BCA", Destination: NoAccount}, ErrUnknownCategory},
		{Transaction{Date: day, Type: Expense, Category: "Food", Source: "BCA", Destination: NoAccount, Amount: Money{Minor: -5}}, ErrInvalidAmount},
		{Transaction{Date: day, Type: Expense, Category: "Food", Source: NoAccount, Destination: NoAccount}, ErrMissingAccount},
		{Transaction{Date: day, Type: Expense, Category: "Food", Source: "BCA", Destination: "Cash"}, ErrInvalidType},
		{Transaction{Date: day, Type: Income, Category: CategoryIncome, Source: NoAccount, Destination: ""}, ErrMissingAccount},
		{Transaction{Date: day, Type: Income, Category: CategoryIncome, Source: "BCA", Destination: "Cash"}, ErrInvalidType},
		{Transaction{Date: day, Type: Transfer, Category: CategoryTransfer, Source: "BCA", Destination: NoAccount}, ErrMissingAccount},
	}
	for i, tc := range bads {
		err := tc.tx.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected a ValidationError, got %T", i, err)
		}
	}
}
