package budget

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Repository defines the data access methods for envelope budgets.
// BatchCreate must write each row conditionally on its identity, so that
// concurrent first-creates collapse to one winner per category.
type Repository interface {
	ListForMonth(ctx context.Context, userID, templateName, m string) ([]*EnvelopeBudget, error)
	BatchCreate(ctx context.Context, budgets []*EnvelopeBudget) error
	UpdateAmount(ctx context.Context, userID, templateName, m, category string, amount decimal.Decimal) (*EnvelopeBudget, error)
}

// TemplateCatalog resolves template entries. The catalog owns the default
// preset; the engine only triggers provisioning.
type TemplateCatalog interface {
	Categories(ctx context.Context, userID, name string) ([]template.Entry, error)
	HasAny(ctx context.Context, userID string) (bool, error)
	ProvisionDefault(ctx context.Context, userID string) (*template.Template, error)
	DefaultName() string
}

// SpendingAggregator supplies per-category actual spending for a month.
type SpendingAggregator interface {
	ActualSpending(ctx context.Context, userID, m string) (map[string]decimal.Decimal, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service is the envelope budget engine.
type Service struct {
	repo     Repository
	catalog  TemplateCatalog
	spending SpendingAggregator
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, catalog TemplateCatalog, spending SpendingAggregator, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		spending: spending,
		events:   eventBus,
		logger:   logger,
	}
}

// GetOrCreateBudgets returns the envelope budgets for (user, template,
// month), deriving them from the template on first call. Existing rows are
// returned verbatim; they are never regenerated, so a template edit after
// generation does not reach into past months.
func (s *Service) GetOrCreateBudgets(ctx context.Context, userID, templateName, m string) ([]*EnvelopeBudget, error) {
	dto := GenerateBudgetsDTO{TemplateName: templateName, Month: m}
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("budget generation validation failed", "error", appErr, "user_id", userID)
		return nil, appErr
	}

	existing, err := s.repo.ListForMonth(ctx, userID, templateName, m)
	if err != nil {
		s.logger.Error("failed to check existing budgets", "error", err, "user_id", userID, "template", templateName, "month", m)
		return nil, err
	}
	if len(existing) > 0 {
		s.logger.Debug("budgets already generated",
			"user_id", userID, "template", templateName, "month", m, "count", len(existing))
		return existing, nil
	}

	entries, err := s.resolveTemplateEntries(ctx, userID, templateName)
	if err != nil {
		return nil, err
	}

	prevMonth, appErr := month.Previous(m)
	if appErr != nil {
		return nil, appErr
	}

	rollovers, err := s.rolloverAmounts(ctx, userID, templateName, prevMonth)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	budgets := make([]*EnvelopeBudget, len(entries))
	for i, entry := range entries {
		budgets[i] = &EnvelopeBudget{
			ID:              ulid.Make().String(),
			UserID:          userID,
			TemplateName:    templateName,
			Category:        entry.Category,
			BudgetAmount:    entry.BudgetAmount,
			Month:           m,
			RolloverEnabled: entry.RolloverEnabled,
			RolloverAmount:  rollovers[entry.Category],
			IsActive:        true,
			CreatedAt:       now,
		}
	}

	if err := s.repo.BatchCreate(ctx, budgets); err != nil {
		s.logger.Error("failed to persist envelope budgets", "error", err, "user_id", userID, "template", templateName, "month", m)
		return nil, err
	}

	// A concurrent generator may have won some or all of the conditional
	// writes; the stored rows are the authoritative set.
	created, err := s.repo.ListForMonth(ctx, userID, templateName, m)
	if err != nil {
		s.logger.Error("failed to read back generated budgets", "error", err, "user_id", userID, "template", templateName, "month", m)
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(context.WithoutCancel(ctx),
			events.NewBudgetsGeneratedEvent(userID, templateName, m, len(created)))
	}

	s.logger.Info("envelope budgets generated",
		"user_id", userID,
		"template", templateName,
		"month", m,
		"count", len(created))

	return created, nil
}

// resolveTemplateEntries loads the template's categories, auto-provisioning
// the default template iff the sentinel name was asked for and the user has
// no templates at all.
func (s *Service) resolveTemplateEntries(ctx context.Context, userID, templateName string) ([]template.Entry, error) {
	entries, err := s.catalog.Categories(ctx, userID, templateName)
	if err == nil {
		return entries, nil
	}

	appErr, ok := errors.IsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeTemplateNotFound {
		s.logger.Error("failed to resolve template", "error", err, "user_id", userID, "template", templateName)
		return nil, err
	}

	if templateName != s.catalog.DefaultName() {
		s.logger.Warn("template not found", "user_id", userID, "template", templateName)
		return nil, err
	}

	hasAny, hasErr := s.catalog.HasAny(ctx, userID)
	if hasErr != nil {
		s.logger.Error("failed to check user templates", "error", hasErr, "user_id", userID)
		return nil, hasErr
	}
	if hasAny {
		// The user manages templates already; a missing Default stays missing.
		return nil, err
	}

	provisioned, provErr := s.catalog.ProvisionDefault(ctx, userID)
	if provErr != nil {
		s.logger.Error("failed to auto-provision default template", "error", provErr, "user_id", userID)
		return nil, provErr
	}

	s.logger.Info("default template auto-provisioned for first budget generation", "user_id", userID)
	return provisioned.Entries, nil
}

// rolloverAmounts computes carry-forward per category from the previous
// month. The two source reads are independent and run in parallel.
func (s *Service) rolloverAmounts(ctx context.Context, userID, templateName, prevMonth string) (map[string]decimal.Decimal, error) {
	var (
		prevBudgets  []*EnvelopeBudget
		prevSpending map[string]decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prevBudgets, err = s.repo.ListForMonth(gctx, userID, templateName, prevMonth)
		return err
	})
	g.Go(func() error {
		var err error
		prevSpending, err = s.spending.ActualSpending(gctx, userID, prevMonth)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load rollover sources", "error", err, "user_id", userID, "month", prevMonth)
		return nil, err
	}

	rollovers := make(map[string]decimal.Decimal)
	for _, b := range prevBudgets {
		if !b.RolloverEnabled {
			continue
		}
		remaining := b.BudgetAmount.Sub(prevSpending[b.Category]).Add(b.RolloverAmount)
		if remaining.Sign() > 0 {
			rollovers[b.Category] = remaining
		}
	}

	return rollovers, nil
}

// ListBudgets returns existing rows only; it never generates.
func (s *Service) ListBudgets(ctx context.Context, userID, templateName, m string) ([]*EnvelopeBudget, error) {
	dto := GenerateBudgetsDTO{TemplateName: templateName, Month: m}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	budgets, err := s.repo.ListForMonth(ctx, userID, templateName, m)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err, "user_id", userID, "template", templateName, "month", m)
		return nil, err
	}
	return budgets, nil
}

// UpdateBudgetAmounts applies independent per-category amount edits. There
// is no transaction across the batch; the first failing write stops the
// loop and already-applied edits stay.
func (s *Service) UpdateBudgetAmounts(ctx context.Context, userID string, dto UpdateBudgetAmountsDTO) ([]*EnvelopeBudget, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("budget amount update validation failed", "error", appErr, "user_id", userID)
		return nil, appErr
	}

	updated := make([]*EnvelopeBudget, 0, len(dto.Updates))
	for _, update := range dto.Updates {
		b, err := s.repo.UpdateAmount(ctx, userID, dto.TemplateName, dto.Month, update.Category, update.Amount)
		if err != nil {
			s.logger.Error("failed to update budget amount",
				"error", err,
				"user_id", userID,
				"template", dto.TemplateName,
				"month", dto.Month,
				"category", update.Category)
			return nil, err
		}
		updated = append(updated, b)
	}

	s.logger.Info("budget amounts updated",
		"user_id", userID,
		"template", dto.TemplateName,
		"month", dto.Month,
		"count", len(updated))

	return updated, nil
}
