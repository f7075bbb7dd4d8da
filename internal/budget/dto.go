package budget

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/common/validation"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/shopspring/decimal"
)

// GenerateBudgetsDTO requests envelope budgets for one template and month.
// The operation is idempotent: existing rows are returned untouched.
type GenerateBudgetsDTO struct {
	TemplateName string `json:"template_name"`
	Month        string `json:"month"`
}

func (dto GenerateBudgetsDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("template_name", dto.TemplateName).
		Required().
		MaxLength(100)
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return month.Validate(dto.Month)
}

type BudgetAmountUpdate struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// UpdateBudgetAmountsDTO edits budget amounts for already-generated rows.
// Each update is an independent write; rollover fields never change here.
type UpdateBudgetAmountsDTO struct {
	TemplateName string               `json:"template_name"`
	Month        string               `json:"month"`
	Updates      []BudgetAmountUpdate `json:"updates"`
}

func (dto UpdateBudgetAmountsDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("template_name", dto.TemplateName).
		Required().
		MaxLength(100)
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if appErr := month.Validate(dto.Month); appErr != nil {
		return appErr
	}
	if len(dto.Updates) == 0 {
		return errors.NewValidationError("updates requires at least one entry", errors.ErrCodeValidationFailed)
	}
	seen := make(map[string]bool, len(dto.Updates))
	for _, update := range dto.Updates {
		if update.Category == "" {
			return errors.NewValidationFieldError("category", "category is required", errors.ErrCodeInvalidCategory)
		}
		if update.Amount.Sign() < 0 {
			return errors.NewValidationFieldError("amount",
				fmt.Sprintf("amount for %s cannot be negative", update.Category),
				errors.ErrCodeInvalidAmount)
		}
		if seen[update.Category] {
			return errors.NewValidationFieldError("category",
				fmt.Sprintf("category %s appears more than once", update.Category),
				errors.ErrCodeInvalidCategory)
		}
		seen[update.Category] = true
	}
	return nil
}

type BudgetResponse struct {
	ID              string          `json:"id"`
	TemplateName    string          `json:"template_name"`
	Category        string          `json:"category"`
	BudgetAmount    decimal.Decimal `json:"budget_amount"`
	Month           string          `json:"month"`
	RolloverEnabled bool            `json:"rollover_enabled"`
	RolloverAmount  decimal.Decimal `json:"rollover_amount"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToResponse(b *EnvelopeBudget) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
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

func ToResponseList(budgets []*EnvelopeBudget) []BudgetResponse {
	result := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		result[i] = ToResponse(b)
	}
	return result
}
