package recurring

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/google/uuid"
)

// Repository defines the data access methods for recurring transactions.
// Update writes the full row; ListActive spans all users and backs the
// processor sweep.
type Repository interface {
	Create(ctx context.Context, rec *RecurringTransaction) error
	GetByID(ctx context.Context, userID, id string) (*RecurringTransaction, error)
	List(ctx context.Context, userID string) ([]*RecurringTransaction, error)
	ListActive(ctx context.Context) ([]*RecurringTransaction, error)
	Update(ctx context.Context, rec *RecurringTransaction) error
	Delete(ctx context.Context, userID, id string) error
}

// Service handles recurring transaction business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateRecurring schedules a new recurring transaction for the user.
func (s *Service) CreateRecurring(ctx context.Context, userID string, dto CreateRecurringDTO) (*RecurringTransaction, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("recurring validation failed", "error", appErr, "user_id", userID)
		return nil, appErr
	}

	canonicalType, _ := transaction.NormalizeType(dto.Type)
	frequency, _ := NormalizeFrequency(dto.Frequency)

	dayOfMonth := dto.DayOfMonth
	if frequency != FrequencyMonthly {
		dayOfMonth = 0
	}

	now := time.Now()
	rec := &RecurringTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    dto.Category,
		Amount:      dto.Amount,
		Type:        canonicalType,
		Description: dto.Description,
		Frequency:   frequency,
		DayOfMonth:  dayOfMonth,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Error("failed to create recurring transaction", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("recurring transaction created",
		"recurring_id", rec.ID,
		"user_id", userID,
		"frequency", rec.Frequency)

	return rec, nil
}

// GetRecurring retrieves one recurring transaction scoped to the user.
func (s *Service) GetRecurring(ctx context.Context, userID, id string) (*RecurringTransaction, error) {
	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		s.logger.Error("failed to get recurring transaction", "error", err, "recurring_id", id, "user_id", userID)
		return nil, err
	}
	return rec, nil
}

// ListRecurring lists all of the user's recurring transactions, active and
// paused.
func (s *Service) ListRecurring(ctx context.Context, userID string) ([]*RecurringTransaction, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list recurring transactions", "error", err, "user_id", userID)
		return nil, err
	}
	return rows, nil
}

// UpdateRecurring applies a structured patch. The patched row must stay
// coherent: a monthly schedule always carries a day of month.
func (s *Service) UpdateRecurring(ctx context.Context, userID, id string, dto UpdateRecurringDTO) (*RecurringTransaction, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("recurring update validation failed", "error", appErr, "recurring_id", id, "user_id", userID)
		return nil, appErr
	}

	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		s.logger.Error("failed to load recurring transaction for update", "error", err, "recurring_id", id, "user_id", userID)
		return nil, err
	}

	if dto.Category != nil {
		rec.Category = *dto.Category
	}
	if dto.Amount != nil {
		rec.Amount = *dto.Amount
	}
	if dto.Type != nil {
		canonicalType, _ := transaction.NormalizeType(*dto.Type)
		rec.Type = canonicalType
	}
	if dto.Description != nil {
		rec.Description = *dto.Description
	}
	if dto.Frequency != nil {
		frequency, _ := NormalizeFrequency(*dto.Frequency)
		rec.Frequency = frequency
	}
	if dto.DayOfMonth != nil {
		rec.DayOfMonth = *dto.DayOfMonth
	}
	if dto.IsActive != nil {
		rec.IsActive = *dto.IsActive
	}

	if rec.Frequency == FrequencyMonthly && rec.DayOfMonth == 0 {
		return nil, errors.NewValidationFieldError("day_of_month",
			"monthly schedules require day_of_month",
			errors.ErrCodeValidationFailed)
	}
	if rec.Frequency != FrequencyMonthly {
		rec.DayOfMonth = 0
	}

	rec.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, rec); err != nil {
		s.logger.Error("failed to update recurring transaction", "error", err, "recurring_id", id, "user_id", userID)
		return nil, err
	}

	s.logger.Info("recurring transaction updated", "recurring_id", id, "user_id", userID)
	return rec, nil
}

// DeleteRecurring removes one recurring transaction scoped to the user.
func (s *Service) DeleteRecurring(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.logger.Error("failed to delete recurring transaction", "error", err, "recurring_id", id, "user_id", userID)
		return err
	}

	s.logger.Info("recurring transaction deleted", "recurring_id", id, "user_id", userID)
	return nil
}
