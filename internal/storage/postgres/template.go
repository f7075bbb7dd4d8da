package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	datamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/template"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateRepository implements the template.Repository interface using
// GORM.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) template.Repository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *template.Template) error {
	dm, err := template.ToDataModel(t)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dm)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTemplateExists
	}
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, userID, name string) (*template.Template, error) {
	var dm datamodel.BudgetTemplate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTemplateNotFound
		}
		return nil, err
	}
	return template.FromDataModel(&dm)
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]*template.Template, error) {
	var dms []*datamodel.BudgetTemplate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	templates := make([]*template.Template, 0, len(dms))
	for _, dm := range dms {
		t, err := template.FromDataModel(dm)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (r *TemplateRepository) Replace(ctx context.Context, t *template.Template) error {
	dm, err := template.ToDataModel(t)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&datamodel.BudgetTemplate{}).
		Where("user_id = ? AND name = ?", t.UserID, t.Name).
		Updates(map[string]interface{}{
			"categories": dm.Categories,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, name string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&datamodel.BudgetTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) HasAny(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&datamodel.BudgetTemplate{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
