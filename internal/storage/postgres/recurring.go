package postgres

import (
	"context"

	"github.com/frahmantamala/envelope-budget/internal"
	datamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/recurring"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"gorm.io/gorm"
)

// RecurringRepository implements the recurring.Repository interface using
// GORM.
type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) recurring.Repository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) Create(ctx context.Context, rec *recurring.RecurringTransaction) error {
	return r.db.WithContext(ctx).Create(recurring.ToDataModel(rec)).Error
}

func (r *RecurringRepository) GetByID(ctx context.Context, userID, id string) (*recurring.RecurringTransaction, error) {
	var dm datamodel.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecurringNotFound
		}
		return nil, err
	}
	return recurring.FromDataModel(&dm), nil
}

func (r *RecurringRepository) List(ctx context.Context, userID string) ([]*recurring.RecurringTransaction, error) {
	var dms []*datamodel.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return recurring.FromDataModelSlice(dms), nil
}

func (r *RecurringRepository) ListActive(ctx context.Context) ([]*recurring.RecurringTransaction, error) {
	var dms []*datamodel.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return recurring.FromDataModelSlice(dms), nil
}

func (r *RecurringRepository) Update(ctx context.Context, rec *recurring.RecurringTransaction) error {
	result := r.db.WithContext(ctx).Model(&datamodel.RecurringTransaction{}).
		Where("id = ? AND user_id = ?", rec.ID, rec.UserID).
		Updates(map[string]interface{}{
			"category":     rec.Category,
			"amount":       rec.Amount,
			"type":         rec.Type,
			"description":  rec.Description,
			"frequency":    rec.Frequency,
			"day_of_month": rec.DayOfMonth,
			"is_active":    rec.IsActive,
			"last_run_at":  rec.LastRunAt,
			"updated_at":   rec.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrRecurringNotFound
	}
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&datamodel.RecurringTransaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrRecurringNotFound
	}
	return nil
}
