package statedao

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/rs/zerolog"
	"github.com/savaki/ddb"
)

const (
	kakaoMarkerAttribute = "kakao_last_send_no"
	tossMarkerAttribute  = "toss_last_send_key"
)

var ErrNotFound = errors.New("send state not found")

// DAO provides access to the send state table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new send state DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Record{}),
		api:       api,
		tableName: tableName,
	}
}

// Table exposes the underlying table, e.g. for creating it locally.
func (d *DAO) Table() *ddb.Table {
	return d.table
}

func (d *DAO) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	if err := d.table.Get(id).ConsistentRead(true).ScanWithContext(ctx, &r); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return Record{}, fmt.Errorf("failed to get send state %v: %w", id, ErrNotFound)
		}
		return Record{}, fmt.Errorf("failed to get send state %v: %w", id, err)
	}
	return r, nil
}

func (d *DAO) Put(ctx context.Context, r Record) error {
	return d.table.Put(r).RunWithContext(ctx)
}

func (d *DAO) UpdateKakaoMarker(ctx context.Context, id, lastSendNo string) error {
	return d.update(ctx, id, map[string]string{kakaoMarkerAttribute: lastSendNo})
}

func (d *DAO) UpdateTossMarker(ctx context.Context, id, lastSendKey string) error {
	return d.update(ctx, id, map[string]string{tossMarkerAttribute: lastSendKey})
}

// UpdateMarkers sets both markers in a single UpdateItem.
func (d *DAO) UpdateMarkers(ctx context.Context, id, lastSendNo, lastSendKey string) error {
	return d.update(ctx, id, map[string]string{
		kakaoMarkerAttribute: lastSendNo,
		tossMarkerAttribute:  lastSendKey,
	})
}

func (d *DAO) update(ctx context.Context, id string, attrs map[string]string) (err error) {
	defer func(begin time.Time) {
		zerolog.Ctx(ctx).Info().
			Dur("elapsed", time.Since(begin)).
			Err(err).
			Str("id", id).
			Interface("markers", attrs).
			Msg("updated send state")
	}(time.Now())

	var (
		sets   []string
		names  = map[string]*string{"#id": aws.String("id"), "#updated_at": aws.String("updated_at")}
		values = map[string]*dynamodb.AttributeValue{
			":updated_at": {N: aws.String(strconv.FormatInt(time.Now().Unix(), 10))},
		}
	)
	for i, attr := range slices.Sorted(maps.Keys(attrs)) {
		name, value := fmt.Sprintf("#m%d", i), fmt.Sprintf(":m%d", i)
		sets = append(sets, name+" = "+value)
		names[name] = aws.String(attr)
		values[value] = &dynamodb.AttributeValue{S: aws.String(attrs[attr])}
	}
	sets = append(sets, "#updated_at = :updated_at")

	_, err = d.api.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.tableName),
		Key:                       map[string]*dynamodb.AttributeValue{"id": {S: aws.String(id)}},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return fmt.Errorf("failed to update send state %v: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to update send state %v: %w", id, err)
	}
	return nil
}
