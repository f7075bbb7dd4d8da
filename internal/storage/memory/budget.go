package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/shopspring/decimal"
)

type BudgetRepository struct {
	store *Store
}

func NewBudgetRepository(store *Store) budget.Repository {
	return &BudgetRepository{store: store}
}

func (r *BudgetRepository) ListForMonth(ctx context.Context, userID, templateName, m string) ([]*budget.EnvelopeBudget, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prefix := m + "#"
	rows := make([]*budget.EnvelopeBudget, 0)
	for key, b := range r.store.budgets[budgetPartition(userID, templateName)] {
		if strings.HasPrefix(key, prefix) {
			rows = append(rows, cloneBudget(b))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// BatchCreate writes each row only if its (month, category) identity is
// absent, so concurrent first-creates never produce duplicates.
func (r *BudgetRepository) BatchCreate(ctx context.Context, budgets []*budget.EnvelopeBudget) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, b := range budgets {
		partitionKey := budgetPartition(b.UserID, b.TemplateName)
		partition, ok := r.store.budgets[partitionKey]
		if !ok {
			partition = make(map[string]*budget.EnvelopeBudget)
			r.store.budgets[partitionKey] = partition
		}
		key := budgetKey(b.Month, b.Category)
		if _, exists := partition[key]; exists {
			continue
		}
		partition[key] = cloneBudget(b)
	}
	return nil
}

func (r *BudgetRepository) UpdateAmount(ctx context.Context, userID, templateName, m, category string, amount decimal.Decimal) (*budget.EnvelopeBudget, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.budgets[budgetPartition(userID, templateName)][budgetKey(m, category)]
	if !ok {
		return nil, internal.ErrBudgetNotFound
	}
	b.BudgetAmount = amount
	return cloneBudget(b), nil
}
