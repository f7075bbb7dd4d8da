package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	datamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/transaction"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"gorm.io/gorm"
)

// TransactionRepository implements the transaction.Repository interface
// using GORM.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction.ToDataModel(tx)).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	var dm datamodel.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction.FromDataModel(&dm), nil
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var dms []*datamodel.Transaction
	err := query.Order("date DESC, id").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModelSlice(dms), nil
}

func (r *TransactionRepository) Patch(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Amount != nil {
		updates["amount"] = *patch.Amount
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.Date != nil {
		updates["date"] = *patch.Date
	}
	if patch.Month != nil {
		updates["month"] = *patch.Month
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	result := r.db.WithContext(ctx).Model(&datamodel.Transaction{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrTransactionNotFound
	}

	return r.GetByID(ctx, userID, id)
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&datamodel.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTransactionNotFound
	}
	return nil
}
