package postgres

import (
	"context"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	datamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/budget"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetRepository implements the budget.Repository interface using GORM.
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) ListForMonth(ctx context.Context, userID, templateName, m string) ([]*budget.EnvelopeBudget, error) {
	var dms []*datamodel.EnvelopeBudget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_name = ? AND month = ?", userID, templateName, m).
		Order("category").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return budget.FromDataModelSlice(dms), nil
}

// BatchCreate inserts rows with ON CONFLICT DO NOTHING on the identity
// index, so concurrent first-creates collapse to a single row per category.
func (r *BudgetRepository) BatchCreate(ctx context.Context, budgets []*budget.EnvelopeBudget) error {
	if len(budgets) == 0 {
		return nil
	}

	dms := make([]*datamodel.EnvelopeBudget, len(budgets))
	for i, b := range budgets {
		dms[i] = budget.ToDataModel(b)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dms).Error
}

func (r *BudgetRepository) UpdateAmount(ctx context.Context, userID, templateName, m, category string, amount decimal.Decimal) (*budget.EnvelopeBudget, error) {
	result := r.db.WithContext(ctx).Model(&datamodel.EnvelopeBudget{}).
		Where("user_id = ? AND template_name = ? AND month = ? AND category = ?", userID, templateName, m, category).
		Update("budget_amount", amount)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrBudgetNotFound
	}

	var dm datamodel.EnvelopeBudget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_name = ? AND month = ? AND category = ?", userID, templateName, m, category).
		First(&dm).Error
	if err != nil {
		return nil, err
	}
	return budget.FromDataModel(&dm), nil
}
