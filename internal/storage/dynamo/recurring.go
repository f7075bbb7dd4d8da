package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
)

// recurringRecord carries gsi1 keys only while the schedule is active,
// keeping the ListActive index sparse.
type recurringRecord struct {
	PK          string     `dynamodbav:"pk"`
	SK          string     `dynamodbav:"sk"`
	GSI1PK      string     `dynamodbav:"gsi1pk,omitempty"`
	GSI1SK      string     `dynamodbav:"gsi1sk,omitempty"`
	ID          string     `dynamodbav:"id"`
	UserID      string     `dynamodbav:"user_id"`
	Category    string     `dynamodbav:"category"`
	Amount      number     `dynamodbav:"amount"`
	Type        string     `dynamodbav:"type"`
	Description string     `dynamodbav:"description"`
	Frequency   string     `dynamodbav:"frequency"`
	DayOfMonth  int        `dynamodbav:"day_of_month"`
	IsActive    bool       `dynamodbav:"is_active"`
	LastRunAt   *time.Time `dynamodbav:"last_run_at,omitempty"`
	CreatedAt   time.Time  `dynamodbav:"created_at"`
	UpdatedAt   time.Time  `dynamodbav:"updated_at"`
}

func newRecurringRecord(rec *recurring.RecurringTransaction) recurringRecord {
	record := recurringRecord{
		PK:          userPK(rec.UserID),
		SK:          recurringSK(rec.ID),
		ID:          rec.ID,
		UserID:      rec.UserID,
		Category:    rec.Category,
		Amount:      number{rec.Amount},
		Type:        rec.Type,
		Description: rec.Description,
		Frequency:   rec.Frequency,
		DayOfMonth:  rec.DayOfMonth,
		IsActive:    rec.IsActive,
		LastRunAt:   rec.LastRunAt,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.IsActive {
		record.GSI1PK = recurringActivePK
		record.GSI1SK = recurringSK(rec.ID)
	}
	return record
}

func (rec recurringRecord) toDomain() *recurring.RecurringTransaction {
	return &recurring.RecurringTransaction{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Category:    rec.Category,
		Amount:      rec.Amount.Decimal,
		Type:        rec.Type,
		Description: rec.Description,
		Frequency:   rec.Frequency,
		DayOfMonth:  rec.DayOfMonth,
		IsActive:    rec.IsActive,
		LastRunAt:   rec.LastRunAt,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

type RecurringRepository struct {
	table *Table
}

func NewRecurringRepository(table *Table) recurring.Repository {
	return &RecurringRepository{table: table}
}

func (r *RecurringRepository) Create(ctx context.Context, rec *recurring.RecurringTransaction) error {
	item, err := attributevalue.MarshalMap(newRecurringRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal recurring transaction: %w", err)
	}
	return r.table.putItem(ctx, item)
}

func (r *RecurringRepository) GetByID(ctx context.Context, userID, id string) (*recurring.RecurringTransaction, error) {
	item, err := r.table.getItem(ctx, userPK(userID), recurringSK(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, internal.ErrRecurringNotFound
	}
	return unmarshalRecurring(item)
}

func (r *RecurringRepository) List(ctx context.Context, userID string) ([]*recurring.RecurringTransaction, error) {
	items, err := r.table.queryPrefix(ctx, userPK(userID), "REC#")
	if err != nil {
		return nil, err
	}
	return collectRecurring(items)
}

// ListActive queries the sparse active partition instead of scanning the
// table. Inactive schedules never appear there.
func (r *RecurringRepository) ListActive(ctx context.Context) ([]*recurring.RecurringTransaction, error) {
	items, err := r.table.queryIndexPrefix(ctx, recurringActivePK, "REC#")
	if err != nil {
		return nil, err
	}
	return collectRecurring(items)
}

// Update replaces the whole item so a deactivation also drops the sparse
// index attributes.
func (r *RecurringRepository) Update(ctx context.Context, rec *recurring.RecurringTransaction) error {
	item, err := attributevalue.MarshalMap(newRecurringRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal recurring transaction: %w", err)
	}
	existed, err := r.table.putItemIfExists(ctx, item)
	if err != nil {
		return err
	}
	if !existed {
		return internal.ErrRecurringNotFound
	}
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, id string) error {
	existed, err := r.table.deleteItem(ctx, userPK(userID), recurringSK(id))
	if err != nil {
		return err
	}
	if !existed {
		return internal.ErrRecurringNotFound
	}
	return nil
}

func collectRecurring(items []map[string]types.AttributeValue) ([]*recurring.RecurringTransaction, error) {
	recs := make([]*recurring.RecurringTransaction, 0, len(items))
	for _, item := range items {
		rec, err := unmarshalRecurring(item)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sortRecurring(recs)
	return recs, nil
}

func unmarshalRecurring(item map[string]types.AttributeValue) (*recurring.RecurringTransaction, error) {
	var rec recurringRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal recurring transaction: %w", err)
	}
	return rec.toDomain(), nil
}

func sortRecurring(recs []*recurring.RecurringTransaction) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
