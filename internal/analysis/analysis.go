// Package analysis computes budget-vs-actual variance for one month. The
// core is a pure function over envelope budgets and aggregated spending;
// nothing in it reads or writes storage.
package analysis

import (
	"sort"

	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/shopspring/decimal"
)

type CategoryAnalysis struct {
	Category           string          `json:"category"`
	Budgeted           decimal.Decimal `json:"budgeted"`
	Actual             decimal.Decimal `json:"actual"`
	Remaining          decimal.Decimal `json:"remaining"`
	Percentage         decimal.Decimal `json:"percentage"`
	RolloverEnabled    bool            `json:"rollover_enabled"`
	RolloverAmount     decimal.Decimal `json:"rollover_amount"`
	HasBudget          bool            `json:"has_budget"`
	UnbudgetedSpending bool            `json:"unbudgeted_spending"`
}

type Summary struct {
	TotalBudgeted        decimal.Decimal `json:"total_budgeted"`
	TotalActual          decimal.Decimal `json:"total_actual"`
	TotalRemaining       decimal.Decimal `json:"total_remaining"`
	OverBudgetCategories int             `json:"over_budget_categories"`
	BudgetUtilization    decimal.Decimal `json:"budget_utilization"`
}

type Result struct {
	Categories []CategoryAnalysis `json:"categories"`
	Summary    Summary            `json:"summary"`
}

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Analyze combines envelope budgets with actual per-category spending.
// Budgeted categories compare spending against budget plus rollover;
// spending in categories without a budget row is appended as unbudgeted.
// Actual spending missing for a budgeted category counts as zero.
func Analyze(budgets []*budget.EnvelopeBudget, actualSpending map[string]decimal.Decimal) *Result {
	categories := make([]CategoryAnalysis, 0, len(budgets))
	budgeted := make(map[string]bool, len(budgets))

	var totalBudgeted, totalActual decimal.Decimal
	overBudget := 0

	for _, b := range budgets {
		total := b.TotalAvailable()
		actual := actualSpending[b.Category]
		remaining := total.Sub(actual)

		percentage := decimal.Zero
		if total.Sign() > 0 {
			percentage = round2(actual.Div(total).Mul(hundred))
		}

		if actual.GreaterThan(total) {
			overBudget++
		}

		totalBudgeted = totalBudgeted.Add(total)
		totalActual = totalActual.Add(actual)
		budgeted[b.Category] = true

		categories = append(categories, CategoryAnalysis{
			Category:           b.Category,
			Budgeted:           total,
			Actual:             actual,
			Remaining:          remaining,
			Percentage:         percentage,
			RolloverEnabled:    b.RolloverEnabled,
			RolloverAmount:     b.RolloverAmount,
			HasBudget:          true,
			UnbudgetedSpending: false,
		})
	}

	unbudgeted := make([]string, 0)
	for category := range actualSpending {
		if !budgeted[category] {
			unbudgeted = append(unbudgeted, category)
		}
	}
	sort.Strings(unbudgeted)

	for _, category := range unbudgeted {
		actual := actualSpending[category]
		totalActual = totalActual.Add(actual)

		categories = append(categories, CategoryAnalysis{
			Category:           category,
			Budgeted:           decimal.Zero,
			Actual:             actual,
			Remaining:          actual.Neg(),
			Percentage:         decimal.Zero,
			RolloverEnabled:    false,
			RolloverAmount:     decimal.Zero,
			HasBudget:          false,
			UnbudgetedSpending: true,
		})
	}

	utilization := decimal.Zero
	if totalBudgeted.Sign() > 0 {
		utilization = round2(totalActual.Div(totalBudgeted).Mul(hundred))
	}

	return &Result{
		Categories: categories,
		Summary: Summary{
			TotalBudgeted:        round2(totalBudgeted),
			TotalActual:          round2(totalActual),
			TotalRemaining:       round2(totalBudgeted.Sub(totalActual)),
			OverBudgetCategories: overBudget,
			BudgetUtilization:    utilization,
		},
	}
}
