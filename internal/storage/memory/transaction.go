package memory

import (
	"context"
	"sort"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
)

type TransactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) transaction.Repository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	partition, ok := r.store.transactions[tx.UserID]
	if !ok {
		partition = make(map[string]*transaction.Transaction)
		r.store.transactions[tx.UserID] = partition
	}
	partition[tx.ID] = cloneTransaction(tx)
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tx, ok := r.store.transactions[userID][id]
	if !ok {
		return nil, internal.ErrTransactionNotFound
	}
	return cloneTransaction(tx), nil
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]*transaction.Transaction, 0)
	for _, tx := range r.store.transactions[userID] {
		if filter.Month != "" && tx.Month() != filter.Month {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		rows = append(rows, cloneTransaction(tx))
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID < rows[j].ID
	})

	return paginate(rows, filter.Limit, filter.Offset), nil
}

func (r *TransactionRepository) Patch(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, ok := r.store.transactions[userID][id]
	if !ok {
		return nil, internal.ErrTransactionNotFound
	}

	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	tx.UpdatedAt = time.Now()

	return cloneTransaction(tx), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.transactions[userID][id]; !ok {
		return internal.ErrTransactionNotFound
	}
	delete(r.store.transactions[userID], id)
	return nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
