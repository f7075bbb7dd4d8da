package transaction

import (
	"strings"
	"time"

	txDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/transaction"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry. Type is stored in its
// canonical lowercase form; inputs are normalized at the boundary.
type Transaction struct {
	ID          string
	UserID      string
	Category    string
	Amount      decimal.Decimal
	Type        string
	Date        time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// NormalizeType maps case-insensitive input to the canonical type.
func NormalizeType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TypeExpense:
		return TypeExpense, true
	case TypeIncome:
		return TypeIncome, true
	}
	return "", false
}

// Month returns the YYYY-MM aggregation key the transaction falls in.
func (t *Transaction) Month() string {
	return month.OfDate(t.Date)
}

func ToDataModel(t *Transaction) *txDatamodel.Transaction {
	return &txDatamodel.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date,
		Month:       t.Month(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *txDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModelSlice(transactions []*txDatamodel.Transaction) []*Transaction {
	result := make([]*Transaction, len(transactions))
	for i, t := range transactions {
		result[i] = FromDataModel(t)
	}
	return result
}
