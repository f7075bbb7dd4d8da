package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeBudgetsGenerated   = "budget.envelopes_generated"
	EventTypeRecurringExecuted  = "recurring.executed"
)

type TransactionCreatedEvent struct {
	BaseEvent
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"transaction_type"`
	Month         string          `json:"month"`
}

func NewTransactionCreatedEvent(transactionID, userID, category string, amount decimal.Decimal, txType, month string) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id":   transactionID,
				"user_id":          userID,
				"category":         category,
				"amount":           amount,
				"transaction_type": txType,
				"month":            month,
			},
		},
		TransactionID: transactionID,
		UserID:        userID,
		Category:      category,
		Amount:        amount,
		Type:          txType,
		Month:         month,
	}
}

type BudgetsGeneratedEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	TemplateName string `json:"template_name"`
	Month        string `json:"month"`
	Categories   int    `json:"categories"`
}

func NewBudgetsGeneratedEvent(userID, templateName, month string, categories int) *BudgetsGeneratedEvent {
	return &BudgetsGeneratedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetsGenerated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":       userID,
				"template_name": templateName,
				"month":         month,
				"categories":    categories,
			},
		},
		UserID:       userID,
		TemplateName: templateName,
		Month:        month,
		Categories:   categories,
	}
}

type RecurringExecutedEvent struct {
	BaseEvent
	RecurringID   string          `json:"recurring_id"`
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewRecurringExecutedEvent(recurringID, transactionID, userID string, amount decimal.Decimal) *RecurringExecutedEvent {
	return &RecurringExecutedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRecurringExecuted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"recurring_id":   recurringID,
				"transaction_id": transactionID,
				"user_id":        userID,
				"amount":         amount,
			},
		},
		RecurringID:   recurringID,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
	}
}
