package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnvelopeBudget is unique per (user, template, month, category). The unique
// index is what makes concurrent first-creates collapse to a single row via
// ON CONFLICT DO NOTHING.
type EnvelopeBudget struct {
	ID              string          `gorm:"primaryKey;column:id"`
	UserID          string          `gorm:"column:user_id;not null;uniqueIndex:idx_envelope_budgets_identity,priority:1"`
	TemplateName    string          `gorm:"column:template_name;not null;uniqueIndex:idx_envelope_budgets_identity,priority:2"`
	Month           string          `gorm:"column:month;not null;uniqueIndex:idx_envelope_budgets_identity,priority:3;index:idx_envelope_budgets_month"`
	Category        string          `gorm:"column:category;not null;uniqueIndex:idx_envelope_budgets_identity,priority:4"`
	BudgetAmount    decimal.Decimal `gorm:"column:budget_amount;type:decimal(14,2);not null"`
	RolloverEnabled bool            `gorm:"column:rollover_enabled;not null;default:false"`
	RolloverAmount  decimal.Decimal `gorm:"column:rollover_amount;type:decimal(14,2);not null"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (EnvelopeBudget) TableName() string {
	return "envelope_budgets"
}
