package analysis

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/shopspring/decimal"
)

// BudgetSource lists the envelope budgets already stored for a month.
// Analysis is read only: a missing month yields an empty slice, never a
// generation run.
type BudgetSource interface {
	ListBudgets(ctx context.Context, userID, templateName, m string) ([]*budget.EnvelopeBudget, error)
}

type SpendingAggregator interface {
	ActualSpending(ctx context.Context, userID, m string) (map[string]decimal.Decimal, error)
}

type Service struct {
	budgets  BudgetSource
	spending SpendingAggregator
	logger   *slog.Logger
}

func NewService(budgets BudgetSource, spending SpendingAggregator, logger *slog.Logger) *Service {
	return &Service{
		budgets:  budgets,
		spending: spending,
		logger:   logger,
	}
}

func (s *Service) GetAnalysis(ctx context.Context, userID, templateName, m string) (*Result, error) {
	if templateName == "" {
		return nil, errors.NewValidationError("template name is required", errors.ErrCodeInvalidTemplate)
	}
	if err := month.Validate(m); err != nil {
		return nil, err
	}

	budgets, err := s.budgets.ListBudgets(ctx, userID, templateName, m)
	if err != nil {
		s.logger.Error("failed to list budgets for analysis",
			"error", err,
			"user_id", userID,
			"template_name", templateName,
			"month", m)
		return nil, err
	}

	actual, err := s.spending.ActualSpending(ctx, userID, m)
	if err != nil {
		s.logger.Error("failed to aggregate spending for analysis",
			"error", err,
			"user_id", userID,
			"month", m)
		return nil, err
	}

	result := Analyze(budgets, actual)

	s.logger.Info("budget analysis computed",
		"user_id", userID,
		"template_name", templateName,
		"month", m,
		"categories", len(result.Categories),
		"over_budget", result.Summary.OverBudgetCategories)

	return result, nil
}
