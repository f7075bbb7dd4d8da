package template

import (
	"encoding/json"
	"fmt"
	"time"

	templateDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/template"
	"github.com/shopspring/decimal"
)

// Entry is one category line of a budget template. The JSON shape doubles
// as the stored document shape.
type Entry struct {
	Category        string          `json:"category"`
	BudgetAmount    decimal.Decimal `json:"budget_amount"`
	RolloverEnabled bool            `json:"rollover_enabled"`
}

// Template is a per-user named list of category entries. Envelope budgets
// copy from it at generation time and never link back.
type Template struct {
	UserID    string
	Name      string
	Entries   []Entry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultTemplateName is the sentinel that triggers auto-provisioning for
// owners without any templates.
const DefaultTemplateName = "Default"

// DefaultEntries returns the built-in preset for the auto-provisioned
// default template.
func DefaultEntries() []Entry {
	return []Entry{
		{Category: "Food", BudgetAmount: decimal.NewFromInt(500), RolloverEnabled: true},
		{Category: "Transportation", BudgetAmount: decimal.NewFromInt(300), RolloverEnabled: false},
		{Category: "Entertainment", BudgetAmount: decimal.NewFromInt(200), RolloverEnabled: true},
		{Category: "Shopping", BudgetAmount: decimal.NewFromInt(400), RolloverEnabled: false},
		{Category: "Bills", BudgetAmount: decimal.NewFromInt(800), RolloverEnabled: false},
		{Category: "Healthcare", BudgetAmount: decimal.NewFromInt(150), RolloverEnabled: true},
	}
}

func ToDataModel(t *Template) (*templateDatamodel.BudgetTemplate, error) {
	categories, err := json.Marshal(t.Entries)
	if err != nil {
		return nil, fmt.Errorf("marshal template entries: %w", err)
	}
	return &templateDatamodel.BudgetTemplate{
		UserID:     t.UserID,
		Name:       t.Name,
		Categories: string(categories),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}, nil
}

func FromDataModel(dm *templateDatamodel.BudgetTemplate) (*Template, error) {
	var entries []Entry
	if err := json.Unmarshal([]byte(dm.Categories), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal template entries: %w", err)
	}
	return &Template{
		UserID:    dm.UserID,
		Name:      dm.Name,
		Entries:   entries,
		CreatedAt: dm.CreatedAt,
		UpdatedAt: dm.UpdatedAt,
	}, nil
}
