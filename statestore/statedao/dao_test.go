package statedao

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/tj/assert"
)

func withTable(t *testing.T, callback func(ctx context.Context, dao *DAO)) {
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}

	var (
		s = session.Must(session.NewSession(aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials("blah", "blah", "")).
			WithEndpoint(endpoint).
			WithRegion("us-west-2")))
		api       = dynamodb.New(s)
		tableName = fmt.Sprintf("table-%v", time.Now().UnixNano())
		dao       = New(api, tableName)
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := dao.Table().CreateTableIfNotExists(ctx)
	assert.Nil(t, err)
	defer dao.Table().DeleteTableIfExists(ctx)

	callback(ctx, dao)
}

func TestDAO(t *testing.T) {
	withTable(t, func(ctx context.Context, dao *DAO) {
		record := Record{
			ID:              "morning-financial",
			MessageTemplate: "[morning financial]\n{}",
			KakaoLastSendNo: "100",
			TossLastSendKey: "abc",
		}
		err := dao.Put(ctx, record)
		assert.Nil(t, err)

		got, err := dao.Get(ctx, record.ID)
		assert.Nil(t, err)
		assert.Equal(t, record, got)

		err = dao.UpdateKakaoMarker(ctx, record.ID, "103")
		assert.Nil(t, err)

		got, err = dao.Get(ctx, record.ID)
		assert.Nil(t, err)
		assert.Equal(t, "103", got.KakaoLastSendNo)
		assert.Equal(t, "abc", got.TossLastSendKey)
		assert.NotZero(t, got.UpdatedAt)

		err = dao.UpdateMarkers(ctx, record.ID, "104", "def")
		assert.Nil(t, err)

		got, err = dao.Get(ctx, record.ID)
		assert.Nil(t, err)
		assert.Equal(t, "104", got.KakaoLastSendNo)
		assert.Equal(t, "def", got.TossLastSendKey)
		assert.Equal(t, record.MessageTemplate, got.MessageTemplate)
	})
}

func TestDAOMissing(t *testing.T) {
	withTable(t, func(ctx context.Context, dao *DAO) {
		_, err := dao.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))

		err = dao.UpdateTossMarker(ctx, "missing", "def")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "prod-morning-financial--state", TableName("prod"))
}
