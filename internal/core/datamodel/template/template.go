package template

import "time"

// BudgetTemplate keys on (user_id, name), mirroring the single-table layout.
// Categories holds the JSON-encoded entry list, the same document shape the
// key-value backend stores.
type BudgetTemplate struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	Name       string    `gorm:"column:name;primaryKey"`
	Categories string    `gorm:"column:categories;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BudgetTemplate) TableName() string {
	return "budget_templates"
}
