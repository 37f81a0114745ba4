package http

import (
	"strings"

	"keuangan/internal/core"
	"keuangan/internal/services"
)

// sanitizeInput drops control characters other than tab, newline and
// carriage return, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

type (
	transactionDTO struct {
		Date        string `json:"date"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Source      string `json:"source_account"`
		Destination string `json:"destination_account"`
		Amount      int64  `json:"amount"`
		Note        string `json:"note"`
	}

	balanceDTO struct {
		Account string `json:"account"`
		Balance int64  `json:"balance"`
	}

	categoryDTO struct {
		Category  string  `json:"category"`
		Kind      string  `json:"kind"`
		Allotment int64   `json:"allotment"`
		Spent     int64   `json:"spent"`
		Remaining int64   `json:"remaining"`
		Percent   float64 `json:"percent"`
	}

	amountDTO struct {
		Category string `json:"category"`
		Amount   int64  `json:"amount"`
	}

	summaryDTO struct {
		Year                   int           `json:"year"`
		Month                  int           `json:"month"`
		Categories             []categoryDTO `json:"categories"`
		TotalBudget            int64         `json:"total_budget"`
		TotalSpent             int64         `json:"total_spent"`
		Remaining              int64         `json:"remaining"`
		ReceivablesOutstanding int64         `json:"receivables_outstanding"`
		ReceivablesRepaid      int64         `json:"receivables_repaid"`
		Unplanned              []amountDTO   `json:"unplanned"`
	}

	skippedDTO struct {
		Row   int    `json:"row"`
		Error string `json:"error"`
	}

	dashboardDTO struct {
		Balances       []balanceDTO `json:"balances"`
		NetWorth       int64        `json:"net_worth"`
		Summary        summaryDTO   `json:"summary"`
		NetReceivables int64        `json:"net_receivables"`
		Skipped        []skippedDTO `json:"skipped_rows"`
	}

	planDTO struct {
		Accounts          []string      `json:"accounts"`
		ExpenseCategories []string      `json:"expense_categories"`
		Budget            []categoryDTO `json:"budget"`
		TotalBudget       int64         `json:"total_budget"`
	}
)

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionDTO{
			Date:        t.Date.String(),
			Type:        string(t.Type),
			Category:    t.Category,
			Source:      t.Source,
			Destination: t.Destination,
			Amount:      t.Amount.Minor,
			Note:        t.Note,
		})
	}
	return out
}

func toBalanceDTOs(bs []core.AccountBalance) []balanceDTO {
	out := make([]balanceDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, balanceDTO{Account: b.Account, Balance: b.Balance.Minor})
	}
	return out
}

func toSummaryDTO(s core.MonthlySummary) summaryDTO {
	dto := summaryDTO{
		Year:                   s.Year,
		Month:                  s.Month,
		Categories:             make([]categoryDTO, 0, len(s.Categories)),
		TotalBudget:            s.TotalBudget.Minor,
		TotalSpent:             s.TotalSpent.Minor,
		Remaining:              s.Remaining.Minor,
		ReceivablesOutstanding: s.ReceivablesOutstanding.Minor,
		ReceivablesRepaid:      s.ReceivablesRepaid.Minor,
		Unplanned:              make([]amountDTO, 0, len(s.Unplanned)),
	}
	for _, c := range s.Categories {
		dto.Categories = append(dto.Categories, categoryDTO{
			Category:  c.Category.Name,
			Kind:      string(c.Category.Kind),
			Allotment: c.Category.Allotment.Minor,
			Spent:     c.Spent.Minor,
			Remaining: c.Remaining.Minor,
			Percent:   c.Percent,
		})
	}
	for _, u := range s.Unplanned {
		dto.Unplanned = append(dto.Unplanned, amountDTO{Category: u.Name, Amount: u.Amount.Minor})
	}
	return dto
}

func toDashboardDTO(d services.Dashboard) dashboardDTO {
	dto := dashboardDTO{
		Balances:       toBalanceDTOs(d.Balances),
		NetWorth:       d.NetWorth.Minor,
		Summary:        toSummaryDTO(d.Summary),
		NetReceivables: d.NetReceivables.Minor,
		Skipped:        make([]skippedDTO, 0, len(d.Skipped)),
	}
	for _, re := range d.Skipped {
		dto.Skipped = append(dto.Skipped, skippedDTO{Row: re.Row, Error: re.Err.Error()})
	}
	return dto
}

func toPlanDTO(p *core.Plan) planDTO {
	dto := planDTO{
		Accounts:          p.Accounts(),
		ExpenseCategories: p.ExpenseCategories(),
		TotalBudget:       p.TotalBudget().Minor,
	}
	for _, c := range p.Categories() {
		dto.Budget = append(dto.Budget, categoryDTO{
			Category:  c.Name,
			Kind:      string(c.Kind),
			Allotment: c.Allotment.Minor,
		})
	}
	return dto
}
