package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
)

type budgetRecord struct {
	PK              string    `dynamodbav:"pk"`
	SK              string    `dynamodbav:"sk"`
	GSI1PK          string    `dynamodbav:"gsi1pk"`
	GSI1SK          string    `dynamodbav:"gsi1sk"`
	ID              string    `dynamodbav:"id"`
	UserID          string    `dynamodbav:"user_id"`
	TemplateName    string    `dynamodbav:"template_name"`
	Month           string    `dynamodbav:"month"`
	Category        string    `dynamodbav:"category"`
	BudgetAmount    number    `dynamodbav:"budget_amount"`
	RolloverEnabled bool      `dynamodbav:"rollover_enabled"`
	RolloverAmount  number    `dynamodbav:"rollover_amount"`
	IsActive        bool      `dynamodbav:"is_active"`
	CreatedAt       time.Time `dynamodbav:"created_at"`
}

func newBudgetRecord(b *budget.EnvelopeBudget) budgetRecord {
	return budgetRecord{
		PK:              budgetPK(b.UserID, b.TemplateName),
		SK:              budgetSK(b.Month, b.Category),
		GSI1PK:          budgetMonthPK(b.Month),
		GSI1SK:          budgetMonthSK(b.UserID, b.TemplateName, b.Category),
		ID:              b.ID,
		UserID:          b.UserID,
		TemplateName:    b.TemplateName,
		Month:           b.Month,
		Category:        b.Category,
		BudgetAmount:    number{b.BudgetAmount},
		RolloverEnabled: b.RolloverEnabled,
		RolloverAmount:  number{b.RolloverAmount},
		IsActive:        b.IsActive,
		CreatedAt:       b.CreatedAt,
	}
}

func (rec budgetRecord) toDomain() *budget.EnvelopeBudget {
	return &budget.EnvelopeBudget{
		ID:              rec.ID,
		UserID:          rec.UserID,
		TemplateName:    rec.TemplateName,
		Category:        rec.Category,
		BudgetAmount:    rec.BudgetAmount.Decimal,
		Month:           rec.Month,
		RolloverEnabled: rec.RolloverEnabled,
		RolloverAmount:  rec.RolloverAmount.Decimal,
		IsActive:        rec.IsActive,
		CreatedAt:       rec.CreatedAt,
	}
}

type BudgetRepository struct {
	table *Table
	// chunkSize bounds how many conditional puts run at once during
	// BatchCreate.
	chunkSize int
}

const defaultChunkSize = 25

func NewBudgetRepository(table *Table, chunkSize int) budget.Repository {
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}
	return &BudgetRepository{table: table, chunkSize: chunkSize}
}

func (r *BudgetRepository) ListForMonth(ctx context.Context, userID, templateName, m string) ([]*budget.EnvelopeBudget, error) {
	items, err := r.table.queryPrefix(ctx, budgetPK(userID, templateName), "BUDGET#"+m+"#")
	if err != nil {
		return nil, err
	}
	// Sort key order is category order.
	budgets := make([]*budget.EnvelopeBudget, 0, len(items))
	for _, item := range items {
		b, err := unmarshalBudget(item)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// BatchCreate writes each row only if its (month, category) identity is
// absent. BatchWriteItem cannot carry conditions, so rows go through
// per-item conditional puts with bounded parallelism; a lost race against a
// concurrent first writer keeps the winner's row and is not an error.
func (r *BudgetRepository) BatchCreate(ctx context.Context, budgets []*budget.EnvelopeBudget) error {
	if len(budgets) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.chunkSize)
	for _, b := range budgets {
		g.Go(func() error {
			item, err := attributevalue.MarshalMap(newBudgetRecord(b))
			if err != nil {
				return fmt.Errorf("marshal budget: %w", err)
			}
			_, err = r.table.putItemIfAbsent(ctx, item)
			return err
		})
	}
	return g.Wait()
}

func (r *BudgetRepository) UpdateAmount(ctx context.Context, userID, templateName, m, category string, amount decimal.Decimal) (*budget.EnvelopeBudget, error) {
	attrs, err := r.table.updateItem(ctx, budgetPK(userID, templateName), budgetSK(m, category),
		"SET #budget_amount = :budget_amount",
		map[string]string{"#budget_amount": "budget_amount"},
		map[string]types.AttributeValue{
			":budget_amount": &types.AttributeValueMemberN{Value: amount.String()},
		})
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, internal.ErrBudgetNotFound
	}
	return unmarshalBudget(attrs)
}

func unmarshalBudget(item map[string]types.AttributeValue) (*budget.EnvelopeBudget, error) {
	var rec budgetRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal budget: %w", err)
	}
	return rec.toDomain(), nil
}
