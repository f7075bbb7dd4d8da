// Package storage selects and wires a backend behind the domain repository
// interfaces. The services never know which one they run on.
package storage

import (
	"context"
	"fmt"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/storage/dynamo"
	"github.com/frahmantamala/envelope-budget/internal/storage/memory"
	"github.com/frahmantamala/envelope-budget/internal/storage/postgres"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
)

// Store bundles the per-entity repositories of one backend together with
// its health probe and shutdown hook.
type Store struct {
	Transactions transaction.Repository
	Templates    template.Repository
	Budgets      budget.Repository
	Recurring    recurring.Repository

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the backend named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *internal.Config) (*Store, error) {
	switch cfg.Storage.Backend {
	case internal.StorageBackendDynamo:
		return openDynamo(ctx, cfg)
	case internal.StorageBackendPostgres:
		return openPostgres(cfg)
	case internal.StorageBackendMemory:
		return openMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func openDynamo(ctx context.Context, cfg *internal.Config) (*Store, error) {
	client, err := dynamo.NewClient(ctx, cfg.Storage.Dynamo)
	if err != nil {
		return nil, fmt.Errorf("dynamo client: %w", err)
	}
	table := dynamo.NewTable(client, cfg.Storage.Dynamo.TableName)
	return &Store{
		Transactions: dynamo.NewTransactionRepository(table),
		Templates:    dynamo.NewTemplateRepository(table),
		Budgets:      dynamo.NewBudgetRepository(table, cfg.Budget.BatchChunkSize),
		Recurring:    dynamo.NewRecurringRepository(table),
		ping:         table.Ping,
	}, nil
}

func openPostgres(cfg *internal.Config) (*Store, error) {
	gormDB, sqlxDB, err := postgres.Open(cfg.Storage.Database)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{
		Transactions: postgres.NewTransactionRepository(gormDB),
		Templates:    postgres.NewTemplateRepository(gormDB),
		Budgets:      postgres.NewBudgetRepository(gormDB),
		Recurring:    postgres.NewRecurringRepository(gormDB),
		ping:         sqlxDB.PingContext,
		close:        sqlxDB.Close,
	}, nil
}

func openMemory() *Store {
	store := memory.NewStore()
	return &Store{
		Transactions: memory.NewTransactionRepository(store),
		Templates:    memory.NewTemplateRepository(store),
		Budgets:      memory.NewBudgetRepository(store),
		Recurring:    memory.NewRecurringRepository(store),
		ping:         store.Ping,
	}
}
