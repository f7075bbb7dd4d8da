package template

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/common/validation"
)

type CreateTemplateDTO struct {
	Name       string  `json:"name"`
	Categories []Entry `json:"categories"`
}

func (dto CreateTemplateDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("name", dto.Name).
		Required().
		MaxLength(100)
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return validateEntries(dto.Categories)
}

type ReplaceTemplateDTO struct {
	Categories []Entry `json:"categories"`
}

func (dto ReplaceTemplateDTO) Validate() *errors.AppError {
	return validateEntries(dto.Categories)
}

func validateEntries(entries []Entry) *errors.AppError {
	if len(entries) == 0 {
		return errors.NewValidationError("template requires at least one category", errors.ErrCodeInvalidTemplate)
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if appErr := validation.ValidateCategory(entry.Category); appErr != nil {
			return appErr
		}
		if entry.BudgetAmount.Sign() < 0 {
			return errors.NewValidationFieldError("budget_amount",
				fmt.Sprintf("budget amount for %s cannot be negative", entry.Category),
				errors.ErrCodeInvalidAmount)
		}
		if seen[entry.Category] {
			return errors.NewValidationFieldError("category",
				fmt.Sprintf("category %s appears more than once", entry.Category),
				errors.ErrCodeInvalidCategory)
		}
		seen[entry.Category] = true
	}
	return nil
}

type TemplateResponse struct {
	Name       string    `json:"name"`
	Categories []Entry   `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToResponse(t *Template) TemplateResponse {
	return TemplateResponse{
		Name:       t.Name,
		Categories: t.Entries,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func ToResponseList(templates []*Template) []TemplateResponse {
	result := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = ToResponse(t)
	}
	return result
}
