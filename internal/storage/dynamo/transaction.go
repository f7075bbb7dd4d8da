package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
)

// transactionRecord is the stored item shape. The month index keys travel
// with the item so a date change moves it between month partitions.
type transactionRecord struct {
	PK          string    `dynamodbav:"pk"`
	SK          string    `dynamodbav:"sk"`
	GSI1PK      string    `dynamodbav:"gsi1pk"`
	GSI1SK      string    `dynamodbav:"gsi1sk"`
	ID          string    `dynamodbav:"id"`
	UserID      string    `dynamodbav:"user_id"`
	Category    string    `dynamodbav:"category"`
	Amount      number    `dynamodbav:"amount"`
	Type        string    `dynamodbav:"type"`
	Date        string    `dynamodbav:"date"`
	Month       string    `dynamodbav:"month"`
	Description string    `dynamodbav:"description"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func newTransactionRecord(tx *transaction.Transaction) transactionRecord {
	date := tx.Date.Format(month.DateLayout)
	m := tx.Month()
	return transactionRecord{
		PK:          userPK(tx.UserID),
		SK:          transactionSK(tx.ID),
		GSI1PK:      transactionMonthPK(tx.UserID, m),
		GSI1SK:      transactionMonthSK(date, tx.ID),
		ID:          tx.ID,
		UserID:      tx.UserID,
		Category:    tx.Category,
		Amount:      number{tx.Amount},
		Type:        tx.Type,
		Date:        date,
		Month:       m,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func (rec transactionRecord) toDomain() (*transaction.Transaction, error) {
	date, err := time.Parse(month.DateLayout, rec.Date)
	if err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", rec.Date, err)
	}
	return &transaction.Transaction{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Category:    rec.Category,
		Amount:      rec.Amount.Decimal,
		Type:        rec.Type,
		Date:        date,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

type TransactionRepository struct {
	table *Table
}

func NewTransactionRepository(table *Table) transaction.Repository {
	return &TransactionRepository{table: table}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	item, err := attributevalue.MarshalMap(newTransactionRecord(tx))
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	return r.table.putItem(ctx, item)
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	item, err := r.table.getItem(ctx, userPK(userID), transactionSK(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, internal.ErrTransactionNotFound
	}
	return unmarshalTransaction(item)
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var (
		items []map[string]types.AttributeValue
		err   error
	)
	if filter.Month != "" {
		items, err = r.table.queryIndexPrefix(ctx, transactionMonthPK(userID, filter.Month), "TXN#")
	} else {
		items, err = r.table.queryPrefix(ctx, userPK(userID), "TXN#")
	}
	if err != nil {
		return nil, err
	}

	transactions := make([]*transaction.Transaction, 0, len(items))
	for _, item := range items {
		tx, err := unmarshalTransaction(item)
		if err != nil {
			return nil, err
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		transactions = append(transactions, tx)
	}

	// Key order within a partition is by id, so response order is imposed
	// here. Limit and offset apply after the category filter, otherwise a
	// filtered-out item would eat a slot of the page.
	sortTransactions(transactions)
	return paginate(transactions, filter.Limit, filter.Offset), nil
}

func (r *TransactionRepository) Patch(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error) {
	sets := []string{"#updated_at = :updated_at"}
	names := map[string]string{"#updated_at": "updated_at"}
	values := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	set := func(field string, value types.AttributeValue) {
		sets = append(sets, "#"+field+" = :"+field)
		names["#"+field] = field
		values[":"+field] = value
	}

	if patch.Category != nil {
		set("category", &types.AttributeValueMemberS{Value: *patch.Category})
	}
	if patch.Amount != nil {
		set("amount", &types.AttributeValueMemberN{Value: patch.Amount.String()})
	}
	if patch.Type != nil {
		set("type", &types.AttributeValueMemberS{Value: *patch.Type})
	}
	if patch.Date != nil {
		date := patch.Date.Format(month.DateLayout)
		m := month.OfDate(*patch.Date)
		if patch.Month != nil {
			m = *patch.Month
		}
		set("date", &types.AttributeValueMemberS{Value: date})
		set("month", &types.AttributeValueMemberS{Value: m})
		set("gsi1pk", &types.AttributeValueMemberS{Value: transactionMonthPK(userID, m)})
		set("gsi1sk", &types.AttributeValueMemberS{Value: transactionMonthSK(date, id)})
	}
	if patch.Description != nil {
		set("description", &types.AttributeValueMemberS{Value: *patch.Description})
	}

	expr := "SET " + strings.Join(sets, ", ")
	attrs, err := r.table.updateItem(ctx, userPK(userID), transactionSK(id), expr, names, values)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, internal.ErrTransactionNotFound
	}
	return unmarshalTransaction(attrs)
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	existed, err := r.table.deleteItem(ctx, userPK(userID), transactionSK(id))
	if err != nil {
		return err
	}
	if !existed {
		return internal.ErrTransactionNotFound
	}
	return nil
}

func unmarshalTransaction(item map[string]types.AttributeValue) (*transaction.Transaction, error) {
	var rec transactionRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return rec.toDomain()
}

func sortTransactions(transactions []*transaction.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].ID < transactions[j].ID
	})
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
