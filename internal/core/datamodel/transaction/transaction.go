package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string          `gorm:"primaryKey;column:id"`
	UserID      string          `gorm:"column:user_id;not null;index:idx_transactions_user_month,priority:1"`
	Category    string          `gorm:"column:category;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	Type        string          `gorm:"column:type;not null"`
	Date        time.Time       `gorm:"column:date;type:date;not null"`
	Month       string          `gorm:"column:month;not null;index:idx_transactions_user_month,priority:2"`
	Description string          `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
