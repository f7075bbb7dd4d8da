package recurring

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurringTransaction struct {
	ID          string          `gorm:"primaryKey;column:id"`
	UserID      string          `gorm:"column:user_id;not null;index:idx_recurring_user"`
	Category    string          `gorm:"column:category;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	Type        string          `gorm:"column:type;not null"`
	Description string          `gorm:"column:description"`
	Frequency   string          `gorm:"column:frequency;not null"`
	DayOfMonth  int             `gorm:"column:day_of_month"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	LastRunAt   *time.Time      `gorm:"column:last_run_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (RecurringTransaction) TableName() string {
	return "recurring_transactions"
}
