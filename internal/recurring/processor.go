package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
)

type TransactionCreator interface {
	CreateTransaction(ctx context.Context, userID string, dto transaction.CreateTransactionDTO) (*transaction.Transaction, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ProcessResult struct {
	Due      int
	Executed int
	Failed   int
}

// Processor materializes due recurring transactions into real transactions.
// Execution is at-least-once: a row whose transaction was written but whose
// last_run_at advance failed will run again on the next sweep.
type Processor struct {
	repo         Repository
	transactions TransactionCreator
	events       EventPublisher
	batchSize    int
	logger       *slog.Logger
}

func NewProcessor(repo Repository, transactions TransactionCreator, eventBus EventPublisher, batchSize int, logger *slog.Logger) *Processor {
	return &Processor{
		repo:         repo,
		transactions: transactions,
		events:       eventBus,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// ProcessDue sweeps all active schedules and executes the ones due at now,
// up to the configured batch size per sweep. One failing row does not stop
// the sweep.
func (p *Processor) ProcessDue(ctx context.Context, now time.Time) (ProcessResult, error) {
	rows, err := p.repo.ListActive(ctx)
	if err != nil {
		p.logger.Error("failed to list active recurring transactions", "error", err)
		return ProcessResult{}, err
	}

	var result ProcessResult
	for _, rec := range rows {
		if p.batchSize > 0 && result.Due >= p.batchSize {
			break
		}
		if !rec.IsDue(now) {
			continue
		}
		result.Due++

		if err := p.execute(ctx, rec, now); err != nil {
			result.Failed++
			p.logger.Error("recurring execution failed",
				"error", err,
				"recurring_id", rec.ID,
				"user_id", rec.UserID)
			continue
		}
		result.Executed++
	}

	if result.Due > 0 {
		p.logger.Info("recurring sweep finished",
			"due", result.Due,
			"executed", result.Executed,
			"failed", result.Failed)
	}

	return result, nil
}

func (p *Processor) execute(ctx context.Context, rec *RecurringTransaction, now time.Time) error {
	tx, err := p.transactions.CreateTransaction(ctx, rec.UserID, transaction.CreateTransactionDTO{
		Category:    rec.Category,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Date:        now.Format(month.DateLayout),
		Description: rec.Description,
	})
	if err != nil {
		return err
	}

	runAt := now
	rec.LastRunAt = &runAt
	rec.UpdatedAt = now
	if err := p.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("advance last_run_at: %w", err)
	}

	if p.events != nil {
		p.events.Publish(ctx, events.NewRecurringExecutedEvent(rec.ID, tx.ID, rec.UserID, rec.Amount))
	}

	p.logger.Info("recurring transaction executed",
		"recurring_id", rec.ID,
		"transaction_id", tx.ID,
		"user_id", rec.UserID)

	return nil
}
