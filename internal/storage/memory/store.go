// Package memory implements every repository over mutex-guarded maps. It
// backs tests, the seeder, and local development; partitions mirror the
// single-table layout, a user partition mapping sort keys to rows.
package memory

import (
	"context"
	"sync"

	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]map[string]*transaction.Transaction
	templates    map[string]map[string]*template.Template
	budgets      map[string]map[string]*budget.EnvelopeBudget
	recurring    map[string]map[string]*recurring.RecurringTransaction
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]map[string]*transaction.Transaction),
		templates:    make(map[string]map[string]*template.Template),
		budgets:      make(map[string]map[string]*budget.EnvelopeBudget),
		recurring:    make(map[string]map[string]*recurring.RecurringTransaction),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func budgetPartition(userID, templateName string) string {
	return userID + "#" + templateName
}

func budgetKey(m, category string) string {
	return m + "#" + category
}

// Rows are cloned on every read and write so callers never alias store
// state.

func cloneTransaction(tx *transaction.Transaction) *transaction.Transaction {
	c := *tx
	return &c
}

func cloneTemplate(t *template.Template) *template.Template {
	c := *t
	c.Entries = append([]template.Entry(nil), t.Entries...)
	return &c
}

func cloneBudget(b *budget.EnvelopeBudget) *budget.EnvelopeBudget {
	c := *b
	return &c
}

func cloneRecurring(rec *recurring.RecurringTransaction) *recurring.RecurringTransaction {
	c := *rec
	if rec.LastRunAt != nil {
		t := *rec.LastRunAt
		c.LastRunAt = &t
	}
	return &c
}
