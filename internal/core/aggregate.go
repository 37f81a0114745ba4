package core

import (
	"fmt"
	"sort"
)

// Period is a calendar month used to filter the ledger.
type Period struct {
	Year  int
	Month int // 1-12
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid month: %d", p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("invalid year: %d", p.Year)
	}
	return nil
}

func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Balance is lifetime money in minus money out for account. A Transfer
// credits its destination and debits its source in the same pass.
func Balance(txs []Transaction, account string) Money {
	var in, out int64
	for _, t := range txs {
		switch t.Type {
		case Income:
			if t.Destination == account {
				in += t.Amount.Minor
			}
		case Expense:
			if t.Source == account {
				out += t.Amount.Minor
			}
		case Transfer:
			if t.Destination == account {
				in += t.Amount.Minor
			}
			if t.Source == account {
				out += t.Amount.Minor
			}
		}
	}
	return Money{Minor: in - out}
}

// Balances computes every configured account's balance, in the given order.
func Balances(txs []Transaction, accounts []string) []AccountBalance {
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountBalance{Account: a, Balance: Balance(txs, a)})
	}
	return out
}

// NetWorth sums the balances of the configured accounts.
func NetWorth(txs []Transaction, accounts []string) Money {
	var total Money
	for _, b := range Balances(txs, accounts) {
		total = total.Add(b.Balance)
	}
	return total
}

// FilterMonth keeps the rows dated inside year+month, preserving order.
func FilterMonth(txs []Transaction, year, month int) []Transaction {
	p := Period{Year: year, Month: month}
	var out []Transaction
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// Consumption sums Expense and Transfer rows tagged with category. Transfers
// count so that a savings transfer consumes the Savings line.
func Consumption(txs []Transaction, category string) Money {
	var total int64
	for _, t := range txs {
		if (t.Type == Expense || t.Type == Transfer) && t.Category == category {
			total += t.Amount.Minor
		}
	}
	return Money{Minor: total}
}

// Percent is spent/allotment clamped to [0,1]; an allotment of 0 yields 0.
func Percent(spent, allotment Money) float64 {
	if allotment.Minor <= 0 || spent.Minor <= 0 {
		return 0
	}
	p := float64(spent.Minor) / float64(allotment.Minor)
	if p > 1 {
		return 1
	}
	return p
}

// Summarize builds the budget picture for one month. Balances are not part of
// it: those always come from the whole ledger.
func Summarize(txs []Transaction, plan *Plan, year, month int) MonthlySummary {
	monthTxs := FilterMonth(txs, year, month)
	s := MonthlySummary{Year: year, Month: month}

	planned := make(map[string]bool)
	for _, c := range plan.Categories() {
		planned[c.Name] = true
		spent := Consumption(monthTxs, c.Name)
		s.Categories = append(s.Categories, CategoryConsumption{
			Category:  c,
			Spent:     spent,
			Remaining: c.Allotment.Sub(spent),
			Percent:   Percent(spent, c.Allotment),
		})
		if c.Budgeted() {
			s.TotalBudget = s.TotalBudget.Add(c.Allotment)
			s.TotalSpent = s.TotalSpent.Add(spent)
		}
	}
	s.Remaining = s.TotalBudget.Sub(s.TotalSpent)

	unplanned := map[string]int64{}
	var order []string
	for _, t := range monthTxs {
		if t.Category == CategoryReceivables {
			switch t.Type {
			case Expense:
				s.ReceivablesOutstanding = s.ReceivablesOutstanding.Add(t.Amount)
			case Income:
				s.ReceivablesRepaid = s.ReceivablesRepaid.Add(t.Amount)
			}
		}
		if t.Type == Income || planned[t.Category] || t.Category == CategoryTransfer {
			continue
		}
		if _, seen := unplanned[t.Category]; !seen {
			order = append(order, t.Category)
		}
		unplanned[t.Category] += t.Amount.Minor
	}
	for _, name := range order {
		s.Unplanned = append(s.Unplanned, CategoryAmount{Name: name, Amount: Money{Minor: unplanned[name]}})
	}
	return s
}

// NetReceivables is what others still owe the owner over the whole ledger:
// Receivables expenses minus Receivables repayments.
func NetReceivables(txs []Transaction) Money {
	var net int64
	for _, t := range txs {
		if t.Category != CategoryReceivables {
			continue
		}
		switch t.Type {
		case Expense:
			net += t.Amount.Minor
		case Income:
			net -= t.Amount.Minor
		}
	}
	return Money{Minor: net}
}

// SortByDateDesc returns a copy ordered newest first. Rows on the same day
// keep their storage order, so split halves stay adjacent.
func SortByDateDesc(txs []Transaction) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
