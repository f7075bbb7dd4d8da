package budget

import (
	"time"

	budgetDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/budget"
	"github.com/shopspring/decimal"
)

// EnvelopeBudget is one category envelope for one (user, template, month).
// Amounts are copied from the template at generation time; later template
// edits never touch generated rows. Only BudgetAmount may change after
// creation, through an explicit update.
type EnvelopeBudget struct {
	ID              string
	UserID          string
	TemplateName    string
	Category        string
	BudgetAmount    decimal.Decimal
	Month           string
	RolloverEnabled bool
	RolloverAmount  decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
}

// TotalAvailable is the spendable total for the month: the planned amount
// plus what rolled over from the previous month.
func (b *EnvelopeBudget) TotalAvailable() decimal.Decimal {
	return b.BudgetAmount.Add(b.RolloverAmount)
}

func ToDataModel(b *EnvelopeBudget) *budgetDatamodel.EnvelopeBudget {
	return &budgetDatamodel.EnvelopeBudget{
		ID:              b.ID,
		UserID:          b.UserID,
		TemplateName:    b.TemplateName,
		Month:           b.Month,
		Category:        b.Category,
		BudgetAmount:    b.BudgetAmount,
		RolloverEnabled: b.RolloverEnabled,
		RolloverAmount:  b.RolloverAmount,
		IsActive:        b.IsActive,
		CreatedAt:       b.CreatedAt,
	}
}

func FromDataModel(b *budgetDatamodel.EnvelopeBudget) *EnvelopeBudget {
	return &EnvelopeBudget{
		ID:              b.ID,
		UserID:          b.UserID,
		TemplateName:    b.TemplateName,
		Category:        b.Category,
		BudgetAmount:    b.BudgetAmount,
		Month:           b.Month,
		RolloverEnabled: b.RolloverEnabled,
		RolloverAmount:  b.RolloverAmount,
		IsActive:        b.IsActive,
		CreatedAt:       b.CreatedAt,
	}
}

func FromDataModelSlice(budgets []*budgetDatamodel.EnvelopeBudget) []*EnvelopeBudget {
	result := make([]*EnvelopeBudget, len(budgets))
	for i, b := range budgets {
		result[i] = FromDataModel(b)
	}
	return result
}
