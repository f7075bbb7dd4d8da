// Package spending derives per-category actual spending from stored
// transactions. It is a read-side aggregation; nothing here writes.
package spending

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/shopspring/decimal"
)

// TransactionLister is the slice of the transaction repository the
// aggregator needs.
type TransactionLister interface {
	List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Aggregator struct {
	transactions TransactionLister
	logger       *slog.Logger
}

func NewAggregator(transactions TransactionLister, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		transactions: transactions,
		logger:       logger,
	}
}

// ActualSpending sums expense-type transactions per category for one month.
// Income rows never count. Categories without spending are absent from the
// result.
func (a *Aggregator) ActualSpending(ctx context.Context, userID, m string) (map[string]decimal.Decimal, error) {
	if appErr := month.Validate(m); appErr != nil {
		return nil, appErr
	}

	transactions, err := a.transactions.List(ctx, userID, transaction.ListFilter{Month: m})
	if err != nil {
		a.logger.Error("failed to load transactions for spending aggregation",
			"error", err, "user_id", userID, "month", m)
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Type != transaction.TypeExpense {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	return totals, nil
}
