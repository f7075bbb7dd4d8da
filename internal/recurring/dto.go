package recurring

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/common/validation"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/shopspring/decimal"
)

// CreateRecurringDTO is the request payload for scheduling a recurring
// transaction. DayOfMonth only applies to monthly schedules.
type CreateRecurringDTO struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Frequency   string          `json:"frequency"`
	DayOfMonth  int             `json:"day_of_month,omitempty"`
}

func (dto CreateRecurringDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("category", dto.Category).
		Required().
		MaxLength(100)
	validator.Field("amount", dto.Amount).
		Positive(errors.ErrCodeInvalidAmount)
	validator.Field("type", dto.Type).
		Required().
		Custom(func(value interface{}) *errors.AppError {
			if v, ok := value.(string); ok && v != "" {
				if _, ok := transaction.NormalizeType(v); !ok {
					return errors.NewValidationFieldError("type",
						fmt.Sprintf("type must be %q or %q", transaction.TypeExpense, transaction.TypeIncome),
						errors.ErrCodeInvalidType)
				}
			}
			return nil
		})
	validator.Field("description", dto.Description).
		MaxLength(500)
	validator.Field("frequency", dto.Frequency).
		Required().
		Custom(func(value interface{}) *errors.AppError {
			if v, ok := value.(string); ok && v != "" {
				if _, ok := NormalizeFrequency(v); !ok {
					return errors.NewValidationFieldError("frequency",
						fmt.Sprintf("frequency must be %q, %q or %q", FrequencyDaily, FrequencyWeekly, FrequencyMonthly),
						errors.ErrCodeInvalidFrequency)
				}
			}
			return nil
		})
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if frequency, ok := NormalizeFrequency(dto.Frequency); ok {
		if appErr := validateDayOfMonth(frequency, dto.DayOfMonth); appErr != nil {
			return appErr
		}
	}
	return nil
}

func validateDayOfMonth(frequency string, day int) *errors.AppError {
	if frequency != FrequencyMonthly {
		return nil
	}
	if day < 1 || day > 31 {
		return errors.NewValidationFieldError("day_of_month",
			"day_of_month must be between 1 and 31 for monthly schedules",
			errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateRecurringDTO carries a structured patch: only fields present in the
// request body are applied.
type UpdateRecurringDTO struct {
	Category    *string          `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Description *string          `json:"description,omitempty"`
	Frequency   *string          `json:"frequency,omitempty"`
	DayOfMonth  *int             `json:"day_of_month,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (dto UpdateRecurringDTO) IsEmpty() bool {
	return dto.Category == nil && dto.Amount == nil && dto.Type == nil &&
		dto.Description == nil && dto.Frequency == nil && dto.DayOfMonth == nil &&
		dto.IsActive == nil
}

func (dto UpdateRecurringDTO) Validate() *errors.AppError {
	if dto.IsEmpty() {
		return errors.NewValidationError("update requires at least one field", errors.ErrCodeValidationFailed)
	}
	validator := validation.NewValidator()
	if dto.Category != nil {
		validator.Field("category", *dto.Category).
			Required().
			MaxLength(100)
	}
	if dto.Amount != nil {
		validator.Field("amount", *dto.Amount).
			Positive(errors.ErrCodeInvalidAmount)
	}
	if dto.Type != nil {
		validator.Field("type", *dto.Type).
			Custom(func(value interface{}) *errors.AppError {
				if v, ok := value.(string); ok {
					if _, ok := transaction.NormalizeType(v); !ok {
						return errors.NewValidationFieldError("type",
							fmt.Sprintf("type must be %q or %q", transaction.TypeExpense, transaction.TypeIncome),
							errors.ErrCodeInvalidType)
					}
				}
				return nil
			})
	}
	if dto.Description != nil {
		validator.Field("description", *dto.Description).
			MaxLength(500)
	}
	if dto.Frequency != nil {
		validator.Field("frequency", *dto.Frequency).
			Custom(func(value interface{}) *errors.AppError {
				if v, ok := value.(string); ok {
					if _, ok := NormalizeFrequency(v); !ok {
						return errors.NewValidationFieldError("frequency",
							fmt.Sprintf("frequency must be %q, %q or %q", FrequencyDaily, FrequencyWeekly, FrequencyMonthly),
							errors.ErrCodeInvalidFrequency)
					}
				}
				return nil
			})
	}
	if dto.DayOfMonth != nil && (*dto.DayOfMonth < 1 || *dto.DayOfMonth > 31) {
		return errors.NewValidationFieldError("day_of_month",
			"day_of_month must be between 1 and 31",
			errors.ErrCodeValidationFailed)
	}
	return validator.Validate()
}

type RecurringResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Frequency   string          `json:"frequency"`
	DayOfMonth  int             `json:"day_of_month,omitempty"`
	IsActive    bool            `json:"is_active"`
	LastRunAt   *time.Time      `json:"last_run_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToResponse(r *RecurringTransaction) RecurringResponse {
	return RecurringResponse{
		ID:          r.ID,
		Category:    r.Category,
		Amount:      r.Amount,
		Type:        r.Type,
		Description: r.Description,
		Frequency:   r.Frequency,
		DayOfMonth:  r.DayOfMonth,
		IsActive:    r.IsActive,
		LastRunAt:   r.LastRunAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToResponseList(rows []*RecurringTransaction) []RecurringResponse {
	result := make([]RecurringResponse, len(rows))
	for i, r := range rows {
		result[i] = ToResponse(r)
	}
	return result
}
