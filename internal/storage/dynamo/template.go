package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/template"
)

// templateRecord stores category entries as a native list of maps rather
// than a JSON blob, so single entries stay inspectable in the console.
type templateRecord struct {
	PK        string                `dynamodbav:"pk"`
	SK        string                `dynamodbav:"sk"`
	UserID    string                `dynamodbav:"user_id"`
	Name      string                `dynamodbav:"name"`
	Entries   []templateEntryRecord `dynamodbav:"entries"`
	CreatedAt time.Time             `dynamodbav:"created_at"`
	UpdatedAt time.Time             `dynamodbav:"updated_at"`
}

type templateEntryRecord struct {
	Category        string `dynamodbav:"category"`
	BudgetAmount    number `dynamodbav:"budget_amount"`
	RolloverEnabled bool   `dynamodbav:"rollover_enabled"`
}

func newTemplateRecord(t *template.Template) templateRecord {
	return templateRecord{
		PK:        userPK(t.UserID),
		SK:        templateSK(t.Name),
		UserID:    t.UserID,
		Name:      t.Name,
		Entries:   newTemplateEntryRecords(t.Entries),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func newTemplateEntryRecords(entries []template.Entry) []templateEntryRecord {
	records := make([]templateEntryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, templateEntryRecord{
			Category:        e.Category,
			BudgetAmount:    number{e.BudgetAmount},
			RolloverEnabled: e.RolloverEnabled,
		})
	}
	return records
}

func (rec templateRecord) toDomain() *template.Template {
	entries := make([]template.Entry, 0, len(rec.Entries))
	for _, e := range rec.Entries {
		entries = append(entries, template.Entry{
			Category:        e.Category,
			BudgetAmount:    e.BudgetAmount.Decimal,
			RolloverEnabled: e.RolloverEnabled,
		})
	}
	return &template.Template{
		UserID:    rec.UserID,
		Name:      rec.Name,
		Entries:   entries,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type TemplateRepository struct {
	table *Table
}

func NewTemplateRepository(table *Table) template.Repository {
	return &TemplateRepository{table: table}
}

func (r *TemplateRepository) Create(ctx context.Context, t *template.Template) error {
	item, err := attributevalue.MarshalMap(newTemplateRecord(t))
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	created, err := r.table.putItemIfAbsent(ctx, item)
	if err != nil {
		return err
	}
	if !created {
		return internal.ErrTemplateExists
	}
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, userID, name string) (*template.Template, error) {
	item, err := r.table.getItem(ctx, userPK(userID), templateSK(name))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, internal.ErrTemplateNotFound
	}
	return unmarshalTemplate(item)
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]*template.Template, error) {
	items, err := r.table.queryPrefix(ctx, userPK(userID), "TPL#")
	if err != nil {
		return nil, err
	}
	// Sort key order is name order.
	templates := make([]*template.Template, 0, len(items))
	for _, item := range items {
		t, err := unmarshalTemplate(item)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (r *TemplateRepository) Replace(ctx context.Context, t *template.Template) error {
	entries, err := attributevalue.Marshal(newTemplateEntryRecords(t.Entries))
	if err != nil {
		return fmt.Errorf("marshal template entries: %w", err)
	}
	attrs, err := r.table.updateItem(ctx, userPK(t.UserID), templateSK(t.Name),
		"SET #entries = :entries, #updated_at = :updated_at",
		map[string]string{"#entries": "entries", "#updated_at": "updated_at"},
		map[string]types.AttributeValue{
			":entries":    entries,
			":updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		})
	if err != nil {
		return err
	}
	if attrs == nil {
		return internal.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, name string) error {
	existed, err := r.table.deleteItem(ctx, userPK(userID), templateSK(name))
	if err != nil {
		return err
	}
	if !existed {
		return internal.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) HasAny(ctx context.Context, userID string) (bool, error) {
	return r.table.hasPrefix(ctx, userPK(userID), "TPL#")
}

func unmarshalTemplate(item map[string]types.AttributeValue) (*template.Template, error) {
	var rec templateRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	return rec.toDomain(), nil
}
