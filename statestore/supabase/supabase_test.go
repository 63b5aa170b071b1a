package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/tj/assert"
)

type patch struct {
	Table  string
	Filter string
	Values map[string]any
}

type fakeSupabase struct {
	t *testing.T

	mu        sync.Mutex
	signedIn  bool
	signedOut bool
	patches   []patch
	stateRows string
	missingID bool
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	assert.Equal(f.t, "anon-key", r.Header.Get("apikey"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
		var creds map[string]string
		assert.Nil(f.t, json.NewDecoder(r.Body).Decode(&creds))
		if r.URL.Query().Get("grant_type") != "password" || creds["password"] != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		f.signedIn = true
		w.Write([]byte(`{"access_token":"token-1","token_type":"bearer"}`))
		return

	case r.Header.Get("Authorization") != "Bearer token-1":
		w.WriteHeader(http.StatusUnauthorized)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/logout":
		f.signedOut = true
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/MORNING_FINANCIAL":
		assert.Equal(f.t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(f.stateRows))

	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/SUBSCRIBERS":
		w.Write([]byte(`[{"phone_number":"01011112222"},{"phone_number":"01033334444"}]`))

	case r.Method == http.MethodPatch:
		var values map[string]any
		assert.Nil(f.t, json.NewDecoder(r.Body).Decode(&values))
		f.patches = append(f.patches, patch{
			Table:  r.URL.Path,
			Filter: r.URL.Query().Get("id"),
			Values: values,
		})
		if f.missingID {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id":1}]`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFake(t *testing.T, config Config) (*fakeSupabase, *Client) {
	fake := &fakeSupabase{
		t:         t,
		stateRows: `[{"id":1,"message_template":"news\n{}","kakao_last_send_no":100,"toss_last_send_key":"abc"}]`,
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	config.URL = srv.URL + "/"
	config.Key = "anon-key"
	config.Email = "job@example.com"
	if config.Password == "" {
		config.Password = "pw"
	}
	config.SubscriberTable = "SUBSCRIBERS"
	config.Timeout = time.Second
	return fake, New(config)
}

func TestSession(t *testing.T) {
	fake, client := newFake(t, Config{})
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)
	assert.True(t, fake.signedIn)

	state, err := session.SendState(ctx)
	assert.Nil(t, err)
	assert.Equal(t, statestore.SendState{
		ID:              "1",
		MessageTemplate: "news\n{}",
		KakaoLastSendNo: "100",
		TossLastSendKey: "abc",
	}, state)

	subs, err := session.Subscribers(ctx)
	assert.Nil(t, err)
	assert.Equal(t, []string{"01011112222", "01033334444"}, statestore.PhoneNumbers(subs))

	assert.Nil(t, session.UpdateKakaoMarker(ctx, state.ID, "103"))
	assert.Nil(t, session.UpdateTossMarker(ctx, state.ID, "def"))
	assert.Equal(t, []patch{
		{Table: "/rest/v1/MORNING_FINANCIAL", Filter: "eq.1", Values: map[string]any{"kakao_last_send_no": float64(103)}},
		{Table: "/rest/v1/MORNING_FINANCIAL", Filter: "eq.1", Values: map[string]any{"toss_last_send_key": "def"}},
	}, fake.patches)

	assert.Nil(t, session.Close(ctx))
	assert.True(t, fake.signedOut)
}

func TestSignInRejected(t *testing.T) {
	_, client := newFake(t, Config{Password: "wrong"})

	_, err := client.Open(context.Background())
	assert.True(t, errors.Is(err, statestore.ErrStateStore))
}

func TestEmptyStateTable(t *testing.T) {
	fake, client := newFake(t, Config{})
	fake.stateRows = `[]`
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)

	_, err = session.SendState(ctx)
	assert.True(t, errors.Is(err, statestore.ErrStateStore))
}

func TestNullMarkers(t *testing.T) {
	fake, client := newFake(t, Config{})
	fake.stateRows = `[{"id":"row-a","message_template":"{}","kakao_last_send_no":null,"toss_last_send_key":null}]`
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)

	state, err := session.SendState(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "row-a", state.ID)
	assert.Equal(t, "", state.KakaoLastSendNo)
	assert.Equal(t, "", state.TossLastSendKey)
}

func TestUpdateMarkers(t *testing.T) {
	fake, client := newFake(t, Config{})
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)

	err = session.UpdateMarkers(ctx, "1", statestore.Markers{KakaoLastSendNo: "103", TossLastSendKey: "def"})
	assert.Nil(t, err)
	assert.Equal(t, []patch{
		{
			Table:  "/rest/v1/MORNING_FINANCIAL",
			Filter: "eq.1",
			Values: map[string]any{"kakao_last_send_no": float64(103), "toss_last_send_key": "def"},
		},
	}, fake.patches)
}

func TestUpdateMarkersAcrossTables(t *testing.T) {
	fake, client := newFake(t, Config{KakaoTable: "KAKAO", TossTable: "TOSS"})
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)

	err = session.UpdateMarkers(ctx, "1", statestore.Markers{KakaoLastSendNo: "103", TossLastSendKey: "def"})
	assert.True(t, errors.Is(err, statestore.ErrStateStore))
	assert.Empty(t, fake.patches)

	assert.Nil(t, session.UpdateKakaoMarker(ctx, "1", "103"))
	assert.Equal(t, "/rest/v1/KAKAO", fake.patches[0].Table)
}

func TestUpdateMissingRow(t *testing.T) {
	fake, client := newFake(t, Config{})
	fake.missingID = true
	ctx := context.Background()

	session, err := client.Open(ctx)
	assert.Nil(t, err)

	err = session.UpdateTossMarker(ctx, "42", "def")
	assert.True(t, errors.Is(err, statestore.ErrStateStore))
}
