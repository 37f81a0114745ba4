package core

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved category names. Every other category name comes from the plan.
const (
	CategoryOther       = "Other"
	CategoryIncome      = "Income"
	CategoryTransfer    = "Transfer"
	CategorySavings     = "Savings"
	CategoryReceivables = "Receivables"
)

const (
	KindBudget      CategoryKind = "budget"
	KindOther       CategoryKind = "other"
	KindIncome      CategoryKind = "income"
	KindTransfer    CategoryKind = "transfer"
	KindSavings     CategoryKind = "savings"
	KindReceivables CategoryKind = "receivables"
)

type CategoryKind string

// Category is one line of the budget plan, or one of the reserved
// non-budget categories.
type Category struct {
	Name      string
	Kind      CategoryKind
	Allotment Money // monthly
}

// Budgeted reports whether the category counts towards total budget and
// total spent. Receivables never does: it tracks money owed to the owner.
func (c Category) Budgeted() bool {
	switch c.Kind {
	case KindBudget, KindSavings:
		return c.Allotment.Minor > 0
	}
	return false
}

// KindOf returns the kind implied by a reserved name, or KindBudget.
func KindOf(name string) CategoryKind {
	switch name {
	case CategoryOther:
		return KindOther
	case CategoryIncome:
		return KindIncome
	case CategoryTransfer:
		return KindTransfer
	case CategorySavings:
		return KindSavings
	case CategoryReceivables:
		return KindReceivables
	}
	return KindBudget
}

// Plan is the externally supplied configuration: the fixed set of accounts
// and the monthly allotment per category. It is built once at startup and
// only read afterwards.
type Plan struct {
	accounts   []string
	categories []Category
	byName     map[string]int
	accountSet map[string]struct{}
}

var ErrInvalidPlan = errors.New("invalid plan")

// NewPlan validates the accounts and budget lines. A Receivables line with
// allotment 0 is appended when the budget does not mention it.
func NewPlan(accounts []string, budget []Category) (*Plan, error) {
	p := &Plan{
		byName:     make(map[string]int),
		accountSet: make(map[string]struct{}),
	}
	var problems []string

	for _, a := range accounts {
		a = strings.TrimSpace(a)
		if a == "" || a == NoAccount {
			problems = append(problems, fmt.Sprintf("account name %q is not allowed", a))
			continue
		}
		if _, dup := p.accountSet[a]; dup {
			problems = append(problems, fmt.Sprintf("duplicate account %q", a))
			continue
		}
		p.accountSet[a] = struct{}{}
		p.accounts = append(p.accounts, a)
	}
	if len(p.accounts) == 0 {
		problems = append(problems, "at least one account is required")
	}

	for _, c := range budget {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			problems = append(problems, "budget category with empty name")
			continue
		}
		if c.Kind == "" {
			c.Kind = KindOf(c.Name)
		}
		switch c.Kind {
		case KindBudget, KindSavings, KindReceivables:
		default:
			problems = append(problems, fmt.Sprintf("category %q: %s cannot carry a budget", c.Name, c.Kind))
			continue
		}
		if c.Allotment.Minor < 0 {
			problems = append(problems, fmt.Sprintf("category %q: negative allotment", c.Name))
			continue
		}
		if c.Kind == KindReceivables && c.Allotment.Minor != 0 {
			problems = append(problems, fmt.Sprintf("category %q: receivables allotment must be 0", c.Name))
			continue
		}
		if _, dup := p.byName[c.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate category %q", c.Name))
			continue
		}
		p.byName[c.Name] = len(p.categories)
		p.categories = append(p.categories, c)
	}
	if _, ok := p.byName[CategoryReceivables]; !ok {
		p.byName[CategoryReceivables] = len(p.categories)
		p.categories = append(p.categories, Category{Name: CategoryReceivables, Kind: KindReceivables})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return p, nil
}

// Accounts returns the configured accounts in configuration order.
func (p *Plan) Accounts() []string {
	return append([]string(nil), p.accounts...)
}

// Categories returns the budget lines in configuration order.
func (p *Plan) Categories() []Category {
	return append([]Category(nil), p.categories...)
}

func (p *Plan) HasAccount(name string) bool {
	_, ok := p.accountSet[name]
	return ok
}

// Category resolves a name to its plan line or reserved category.
func (p *Plan) Category(name string) (Category, bool) {
	if i, ok := p.byName[name]; ok {
		return p.categories[i], true
	}
	switch k := KindOf(name); k {
	case KindOther, KindIncome, KindTransfer, KindSavings:
		return Category{Name: name, Kind: k}, true
	}
	return Category{}, false
}

// ExpenseCategories lists what an Expense may be tagged with: every plan
// line followed by Other.
func (p *Plan) ExpenseCategories() []string {
	out := make([]string, 0, len(p.categories)+1)
	for _, c := range p.categories {
		out = append(out, c.Name)
	}
	return append(out, CategoryOther)
}

// SavingsCategory names the line a savings transfer is tagged with: the
// first plan line of kind savings, or the reserved Savings name.
func (p *Plan) SavingsCategory() string {
	for _, c := range p.categories {
		if c.Kind == KindSavings {
			return c.Name
		}
	}
	return CategorySavings
}

// TotalBudget sums the allotments of budgeted lines only.
func (p *Plan) TotalBudget() Money {
	var total Money
	for _, c := range p.categories {
		if c.Budgeted() {
			total = total.Add(c.Allotment)
		}
	}
	return total
}
