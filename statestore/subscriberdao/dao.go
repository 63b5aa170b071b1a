package subscriberdao

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to the subscribers table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new subscribers DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Subscriber{}),
		api:       api,
		tableName: tableName,
	}
}

// Table exposes the underlying table, e.g. for creating it locally.
func (d *DAO) Table() *ddb.Table {
	return d.table
}

func (d *DAO) Put(ctx context.Context, sub Subscriber) error {
	return d.table.Put(sub).RunWithContext(ctx)
}

func (d *DAO) Delete(ctx context.Context, phoneNumber string) error {
	return d.table.Delete(phoneNumber).RunWithContext(ctx)
}

// List scans every subscriber. The table is small, one page per run in practice.
func (d *DAO) List(ctx context.Context) ([]Subscriber, error) {
	var (
		subs   []Subscriber
		decErr error
	)
	input := &dynamodb.ScanInput{
		TableName:      aws.String(d.tableName),
		ConsistentRead: aws.Bool(true),
	}
	err := d.api.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, _ bool) bool {
		var items []Subscriber
		if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &items); err != nil {
			decErr = err
			return false
		}
		subs = append(subs, items...)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscribers: %w", err)
	}
	if decErr != nil {
		return nil, fmt.Errorf("failed to unmarshal subscribers: %w", decErr)
	}
	return subs, nil
}
