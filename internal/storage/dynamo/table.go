package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GSI1Name is the single secondary index. Transactions use it for month
// queries, budgets for cross-user month queries, recurring schedules as a
// sparse active-only index.
const GSI1Name = "gsi1"

const (
	attrPK     = "pk"
	attrSK     = "sk"
	attrGSI1PK = "gsi1pk"
	attrGSI1SK = "gsi1sk"
)

// Key builders for the single-table layout. Every entity lives in the one
// table; the prefixes keep entity types apart within a partition.
func userPK(userID string) string {
	return "USER#" + userID
}

func transactionSK(id string) string {
	return "TXN#" + id
}

func transactionMonthPK(userID, m string) string {
	return "USER#" + userID + "#MONTH#" + m
}

func transactionMonthSK(date, id string) string {
	return "TXN#" + date + "#" + id
}

func templateSK(name string) string {
	return "TPL#" + name
}

func budgetPK(userID, templateName string) string {
	return "USER#" + userID + "#TPL#" + templateName
}

func budgetSK(m, category string) string {
	return "BUDGET#" + m + "#" + category
}

func budgetMonthPK(m string) string {
	return "MONTH#" + m
}

func budgetMonthSK(userID, templateName, category string) string {
	return "USER#" + userID + "#TPL#" + templateName + "#" + category
}

func recurringSK(id string) string {
	return "REC#" + id
}

// recurringActivePK is the sparse index partition holding every active
// schedule. Inactive rows carry no gsi1 attributes, so the due sweep never
// scans the table.
const recurringActivePK = "RECURRING#ACTIVE"

// Table wraps the one DynamoDB table all entities share and exposes the
// item operations the repositories are built from.
type Table struct {
	client *dynamodb.Client
	name   string
}

func NewTable(client *dynamodb.Client, name string) *Table {
	return &Table{client: client, name: name}
}

func (t *Table) Ping(ctx context.Context) error {
	_, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(t.name),
	})
	return err
}

func (t *Table) key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func (t *Table) putItem(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// putItemIfAbsent writes the item only when its key is not taken yet.
// Reports false when another item already holds the key.
func (t *Table) putItemIfAbsent(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.name),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// putItemIfExists replaces an existing item. Reports false when there is
// nothing under the key to replace.
func (t *Table) putItemIfExists(ctx context.Context, item map[string]types.AttributeValue) (bool, error) {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.name),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// getItem returns the item under the key, or nil when absent.
func (t *Table) getItem(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       t.key(pk, sk),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// queryPrefix drains every item in the partition whose sort key starts
// with prefix, in sort key order.
func (t *Table) queryPrefix(ctx context.Context, pk, prefix string) ([]map[string]types.AttributeValue, error) {
	return t.drain(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	})
}

// queryIndexPrefix is queryPrefix against the secondary index.
func (t *Table) queryIndexPrefix(ctx context.Context, pk, prefix string) ([]map[string]types.AttributeValue, error) {
	return t.drain(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		IndexName:              aws.String(GSI1Name),
		KeyConditionExpression: aws.String("gsi1pk = :pk AND begins_with(gsi1sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	})
}

func (t *Table) drain(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// hasPrefix reports whether the partition holds at least one item with the
// sort key prefix, without reading more than one.
func (t *Table) hasPrefix(ctx context.Context, pk, prefix string) (bool, error) {
	out, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return len(out.Items) > 0, nil
}

// updateItem applies the update expression to an existing item and returns
// its new attributes. Returns nil when the item does not exist.
func (t *Table) updateItem(ctx context.Context, pk, sk, expr string, names map[string]string, values map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	out, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       t.key(pk, sk),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, nil
		}
		return nil, err
	}
	return out.Attributes, nil
}

// deleteItem removes the item under the key, reporting whether it existed.
func (t *Table) deleteItem(ctx context.Context, pk, sk string) (bool, error) {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(t.name),
		Key:                 t.key(pk, sk),
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
