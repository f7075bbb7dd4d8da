package transaction

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/common/validation"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/shopspring/decimal"
)

// CreateTransactionDTO is the request payload for recording a transaction.
type CreateTransactionDTO struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
}

func (dto CreateTransactionDTO) Validate() *errors.AppError {
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
				if _, ok := NormalizeType(v); !ok {
					return errors.NewValidationFieldError("type",
						fmt.Sprintf("type must be %q or %q", TypeExpense, TypeIncome),
						errors.ErrCodeInvalidType)
				}
			}
			return nil
		})
	validator.Field("description", dto.Description).
		MaxLength(500)
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if _, appErr := month.ParseDate(dto.Date); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateTransactionDTO carries a structured patch: only fields present in
// the request body are applied.
type UpdateTransactionDTO struct {
	Category    *string          `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (dto UpdateTransactionDTO) IsEmpty() bool {
	return dto.Category == nil && dto.Amount == nil && dto.Type == nil &&
		dto.Date == nil && dto.Description == nil
}

func (dto UpdateTransactionDTO) Validate() *errors.AppError {
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
					if _, ok := NormalizeType(v); !ok {
						return errors.NewValidationFieldError("type",
							fmt.Sprintf("type must be %q or %q", TypeExpense, TypeIncome),
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
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if dto.Date != nil {
		if _, appErr := month.ParseDate(*dto.Date); appErr != nil {
			return appErr
		}
	}
	return nil
}

// TransactionResponse serializes dates as YYYY-MM-DD and amounts as numbers.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Month       string          `json:"month"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date.Format(month.DateLayout),
		Month:       t.Month(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToResponseList(transactions []*Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = ToResponse(t)
	}
	return result
}
