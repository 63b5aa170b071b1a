package ddbstore

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
	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/morningfinancial/morning-financial/statestore/statedao"
	"github.com/morningfinancial/morning-financial/statestore/subscriberdao"
	"github.com/tj/assert"
)

func withStore(t *testing.T, callback func(ctx context.Context, state *statedao.DAO, subs *subscriberdao.DAO)) {
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}

	var (
		s = session.Must(session.NewSession(aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials("blah", "blah", "")).
			WithEndpoint(endpoint).
			WithRegion("us-west-2")))
		api   = dynamodb.New(s)
		env   = fmt.Sprintf("test%v", time.Now().UnixNano())
		state = statedao.Build(api, env)
		subs  = subscriberdao.Build(api, env)
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Nil(t, state.Table().CreateTableIfNotExists(ctx))
	defer state.Table().DeleteTableIfExists(ctx)
	assert.Nil(t, subs.Table().CreateTableIfNotExists(ctx))
	defer subs.Table().DeleteTableIfExists(ctx)

	callback(ctx, state, subs)
}

func TestSession(t *testing.T) {
	withStore(t, func(ctx context.Context, state *statedao.DAO, subs *subscriberdao.DAO) {
		assert.Nil(t, state.Put(ctx, statedao.Record{
			ID:              "morning-financial",
			MessageTemplate: "{}",
			KakaoLastSendNo: "100",
			TossLastSendKey: "abc",
		}))
		assert.Nil(t, subs.Put(ctx, subscriberdao.Subscriber{PhoneNumber: "010-1"}))

		session, err := New(state, subs, "morning-financial").Open(ctx)
		assert.Nil(t, err)
		defer session.Close(ctx)

		got, err := session.SendState(ctx)
		assert.Nil(t, err)
		assert.Equal(t, statestore.SendState{ID: "morning-financial", MessageTemplate: "{}", KakaoLastSendNo: "100", TossLastSendKey: "abc"}, got)

		recipients, err := session.Subscribers(ctx)
		assert.Nil(t, err)
		assert.Equal(t, []statestore.Subscriber{{PhoneNumber: "010-1"}}, recipients)

		err = session.UpdateMarkers(ctx, got.ID, statestore.Markers{KakaoLastSendNo: "103", TossLastSendKey: "def"})
		assert.Nil(t, err)

		got, err = session.SendState(ctx)
		assert.Nil(t, err)
		assert.Equal(t, "103", got.KakaoLastSendNo)
		assert.Equal(t, "def", got.TossLastSendKey)
	})
}

func TestSessionMissingState(t *testing.T) {
	withStore(t, func(ctx context.Context, state *statedao.DAO, subs *subscriberdao.DAO) {
		session, err := New(state, subs, "missing").Open(ctx)
		assert.Nil(t, err)

		_, err = session.SendState(ctx)
		assert.True(t, errors.Is(err, statestore.ErrStateStore))
		assert.True(t, errors.Is(err, statedao.ErrNotFound))
	})
}
