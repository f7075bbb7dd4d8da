package memory

import (
	"context"
	"sort"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
)

type RecurringRepository struct {
	store *Store
}

func NewRecurringRepository(store *Store) recurring.Repository {
	return &RecurringRepository{store: store}
}

func (r *RecurringRepository) Create(ctx context.Context, rec *recurring.RecurringTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	partition, ok := r.store.recurring[rec.UserID]
	if !ok {
		partition = make(map[string]*recurring.RecurringTransaction)
		r.store.recurring[rec.UserID] = partition
	}
	partition[rec.ID] = cloneRecurring(rec)
	return nil
}

func (r *RecurringRepository) GetByID(ctx context.Context, userID, id string) (*recurring.RecurringTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.recurring[userID][id]
	if !ok {
		return nil, internal.ErrRecurringNotFound
	}
	return cloneRecurring(rec), nil
}

func (r *RecurringRepository) List(ctx context.Context, userID string) ([]*recurring.RecurringTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]*recurring.RecurringTransaction, 0, len(r.store.recurring[userID]))
	for _, rec := range r.store.recurring[userID] {
		rows = append(rows, cloneRecurring(rec))
	}
	sortRecurring(rows)
	return rows, nil
}

func (r *RecurringRepository) ListActive(ctx context.Context) ([]*recurring.RecurringTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]*recurring.RecurringTransaction, 0)
	for _, partition := range r.store.recurring {
		for _, rec := range partition {
			if rec.IsActive {
				rows = append(rows, cloneRecurring(rec))
			}
		}
	}
	sortRecurring(rows)
	return rows, nil
}

func (r *RecurringRepository) Update(ctx context.Context, rec *recurring.RecurringTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.recurring[rec.UserID][rec.ID]; !ok {
		return internal.ErrRecurringNotFound
	}
	r.store.recurring[rec.UserID][rec.ID] = cloneRecurring(rec)
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.recurring[userID][id]; !ok {
		return internal.ErrRecurringNotFound
	}
	delete(r.store.recurring[userID], id)
	return nil
}

func sortRecurring(rows []*recurring.RecurringTransaction) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}
