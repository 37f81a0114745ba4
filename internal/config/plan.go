package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"keuangan/internal/core"
)

// PlanFile is the YAML layout of the budget plan:
//
//	accounts: [BCA, Gopay, Cash]
//	budget:
//	  - category: Food
//	    allotment: 1800000
//	  - category: Savings
//	    allotment: 700000
//	    kind: savings
type PlanFile struct {
	Accounts []string     `yaml:"accounts"`
	Budget   []BudgetLine `yaml:"budget"`
}

type BudgetLine struct {
	Category  string `yaml:"category"`
	Allotment int64  `yaml:"allotment"`
	// Kind is optional; reserved names imply theirs, everything else is a
	// budget line.
	Kind string `yaml:"kind,omitempty"`
}

// DefaultPlan is used when no plan file is configured.
func DefaultPlan() PlanFile {
	return PlanFile{
		Accounts: []string{"BSI", "Permata", "BCA", "Gopay", "Cash", "Tabungan/Investasi"},
		Budget: []BudgetLine{
			{Category: "Food", Allotment: 1800000},
			{Category: "Transport", Allotment: 200000},
			{Category: "Entertainment", Allotment: 100000},
			{Category: "Toiletries", Allotment: 100000},
			{Category: "Charity & Fees", Allotment: 50000},
			{Category: core.CategorySavings, Allotment: 700000},
			{Category: core.CategoryReceivables, Allotment: 0},
		},
	}
}

// LoadPlan reads and validates the plan at path, or the default plan when
// path is empty.
func LoadPlan(path string) (*core.Plan, error) {
	if path == "" {
		return DefaultPlan().Build()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	pf, err := ParsePlan(b)
	if err != nil {
		return nil, fmt.Errorf("plan file %s: %w", path, err)
	}
	return pf.Build()
}

// ParsePlan decodes YAML strictly: unknown keys are errors, so a typo such
// as "allotement" cannot silently zero a budget line.
func ParsePlan(b []byte) (PlanFile, error) {
	var pf PlanFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return PlanFile{}, fmt.Errorf("decode plan: %w", err)
	}
	return pf, nil
}

// Build validates the file into a core.Plan.
func (pf PlanFile) Build() (*core.Plan, error) {
	budget := make([]core.Category, 0, len(pf.Budget))
	for _, l := range pf.Budget {
		budget = append(budget, core.Category{
			Name:      l.Category,
			Kind:      core.CategoryKind(l.Kind),
			Allotment: core.Money{Minor: l.Allotment},
		})
	}
	return core.NewPlan(pf.Accounts, budget)
}
