package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the data access methods for transactions.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, userID, id string) (*Transaction, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]*Transaction, error)
	Patch(ctx context.Context, userID, id string, patch Patch) (*Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ListFilter narrows a listing. A set Month routes the read through the
// month index instead of the full user partition. Zero Limit means no cap.
type ListFilter struct {
	Month    string
	Category string
	Limit    int
	Offset   int
}

// Patch carries only the fields to change. Month travels with Date so the
// stores can maintain their month index entries.
type Patch struct {
	Category    *string
	Amount      *decimal.Decimal
	Type        *string
	Date        *time.Time
	Month       *string
	Description *string
}

// Service handles transaction business logic.
type Service struct {
	repo   Repository
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventBus,
		logger: logger,
	}
}

// CreateTransaction records a new transaction for the user.
func (s *Service) CreateTransaction(ctx context.Context, userID string, dto CreateTransactionDTO) (*Transaction, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("transaction validation failed", "error", appErr, "user_id", userID)
		return nil, appErr
	}

	canonicalType, _ := NormalizeType(dto.Type)
	date, appErr := month.ParseDate(dto.Date)
	if appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	tx := &Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    dto.Category,
		Amount:      dto.Amount,
		Type:        canonicalType,
		Date:        date,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "user_id", userID)
		return nil, err
	}

	if s.events != nil {
		// handlers outlive the request context
		s.events.Publish(context.WithoutCancel(ctx),
			events.NewTransactionCreatedEvent(tx.ID, tx.UserID, tx.Category, tx.Amount, tx.Type, tx.Month()))
	}

	s.logger.Info("transaction created",
		"transaction_id", tx.ID,
		"user_id", userID,
		"type", tx.Type,
		"month", tx.Month())

	return tx, nil
}

// GetTransaction retrieves one transaction scoped to the user.
func (s *Service) GetTransaction(ctx context.Context, userID, id string) (*Transaction, error) {
	tx, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		s.logger.Error("failed to get transaction", "error", err, "transaction_id", id, "user_id", userID)
		return nil, err
	}
	return tx, nil
}

// ListTransactions lists the user's transactions, optionally filtered by
// month and category.
func (s *Service) ListTransactions(ctx context.Context, userID string, filter ListFilter) ([]*Transaction, error) {
	if filter.Month != "" {
		if appErr := month.Validate(filter.Month); appErr != nil {
			return nil, appErr
		}
	}

	transactions, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "user_id", userID, "month", filter.Month)
		return nil, err
	}

	return transactions, nil
}

// UpdateTransaction applies a structured patch: absent fields are untouched.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id string, dto UpdateTransactionDTO) (*Transaction, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("transaction update validation failed", "error", appErr, "transaction_id", id, "user_id", userID)
		return nil, appErr
	}

	patch := Patch{
		Category:    dto.Category,
		Amount:      dto.Amount,
		Description: dto.Description,
	}
	if dto.Type != nil {
		canonicalType, _ := NormalizeType(*dto.Type)
		patch.Type = &canonicalType
	}
	if dto.Date != nil {
		date, appErr := month.ParseDate(*dto.Date)
		if appErr != nil {
			return nil, appErr
		}
		m := month.OfDate(date)
		patch.Date = &date
		patch.Month = &m
	}

	tx, err := s.repo.Patch(ctx, userID, id, patch)
	if err != nil {
		s.logger.Error("failed to update transaction", "error", err, "transaction_id", id, "user_id", userID)
		return nil, err
	}

	s.logger.Info("transaction updated", "transaction_id", id, "user_id", userID)
	return tx, nil
}

// DeleteTransaction removes one transaction scoped to the user.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.logger.Error("failed to delete transaction", "error", err, "transaction_id", id, "user_id", userID)
		return err
	}

	s.logger.Info("transaction deleted", "transaction_id", id, "user_id", userID)
	return nil
}
