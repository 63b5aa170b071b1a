// Package supabase implements statestore on top of a Supabase project: GoTrue
// password sign-in for the session and PostgREST for table access.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/rs/zerolog"
)

const DefaultStateTable = "MORNING_FINANCIAL"

type Config struct {
	URL      string
	Key      string
	Email    string
	Password string

	StateTable      string
	KakaoTable      string
	TossTable       string
	SubscriberTable string

	Timeout time.Duration
}

type Client struct {
	config Config
	http   *resty.Client
}

func New(config Config) *Client {
	if config.StateTable == "" {
		config.StateTable = DefaultStateTable
	}
	if config.KakaoTable == "" {
		config.KakaoTable = config.StateTable
	}
	if config.TossTable == "" {
		config.TossTable = config.StateTable
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.URL, "/")).
		SetTimeout(config.Timeout).
		SetHeader("apikey", config.Key).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: config,
		http:   client,
	}
}

// Open signs in with the configured email and password.
func (c *Client) Open(ctx context.Context) (statestore.Session, error) {
	var token struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{
			"email":    c.config.Email,
			"password": c.config.Password,
		}).
		SetResult(&token).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign in: %w", statestore.ErrStateStore, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: failed to sign in: status %d: %v", statestore.ErrStateStore, resp.StatusCode(), resp.String())
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: failed to sign in: no access token returned", statestore.ErrStateStore)
	}

	zerolog.Ctx(ctx).Info().Str("email", c.config.Email).Msg("signed in to supabase")

	return &Session{
		client: c,
		token:  token.AccessToken,
	}, nil
}

type Session struct {
	client *Client
	token  string
}

func (s *Session) request(ctx context.Context) *resty.Request {
	return s.client.http.R().
		SetContext(ctx).
		SetAuthToken(s.token)
}

// text decodes a JSON string, number or null into a string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = text(n.String())
	}
	return nil
}

type stateRow struct {
	ID              text   `json:"id"`
	MessageTemplate string `json:"message_template"`
	KakaoLastSendNo text   `json:"kakao_last_send_no"`
	TossLastSendKey text   `json:"toss_last_send_key"`
}

// SendState reads the first row of the state table.
func (s *Session) SendState(ctx context.Context) (statestore.SendState, error) {
	table := s.client.config.StateTable

	var rows []stateRow
	resp, err := s.request(ctx).
		SetPathParam("table", table).
		SetQueryParam("select", "*").
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get("/rest/v1/{table}")
	if err != nil {
		return statestore.SendState{}, fmt.Errorf("%w: failed to read %v: %w", statestore.ErrStateStore, table, err)
	}
	if !resp.IsSuccess() {
		return statestore.SendState{}, fmt.Errorf("%w: failed to read %v: status %d: %v", statestore.ErrStateStore, table, resp.StatusCode(), resp.String())
	}
	if len(rows) == 0 {
		return statestore.SendState{}, fmt.Errorf("%w: failed to read %v: table is empty", statestore.ErrStateStore, table)
	}

	row := rows[0]
	return statestore.SendState{
		ID:              string(row.ID),
		MessageTemplate: row.MessageTemplate,
		KakaoLastSendNo: string(row.KakaoLastSendNo),
		TossLastSendKey: string(row.TossLastSendKey),
	}, nil
}

func (s *Session) Subscribers(ctx context.Context) ([]statestore.Subscriber, error) {
	table := s.client.config.SubscriberTable

	var rows []struct {
		PhoneNumber string `json:"phone_number"`
	}
	resp, err := s.request(ctx).
		SetPathParam("table", table).
		SetQueryParam("select", "phone_number").
		SetResult(&rows).
		Get("/rest/v1/{table}")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read subscribers from %v: %w", statestore.ErrStateStore, table, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: failed to read subscribers from %v: status %d: %v", statestore.ErrStateStore, table, resp.StatusCode(), resp.String())
	}

	subs := make([]statestore.Subscriber, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, statestore.Subscriber{PhoneNumber: row.PhoneNumber})
	}
	return subs, nil
}

func (s *Session) UpdateKakaoMarker(ctx context.Context, id, lastSendNo string) error {
	return s.patch(ctx, s.client.config.KakaoTable, id, map[string]any{
		"kakao_last_send_no": numeric(lastSendNo),
	})
}

func (s *Session) UpdateTossMarker(ctx context.Context, id, lastSendKey string) error {
	return s.patch(ctx, s.client.config.TossTable, id, map[string]any{
		"toss_last_send_key": lastSendKey,
	})
}

// UpdateMarkers issues a single PATCH, so it requires both markers to live in
// the same table.
func (s *Session) UpdateMarkers(ctx context.Context, id string, markers statestore.Markers) error {
	config := s.client.config
	if config.KakaoTable != config.TossTable {
		return fmt.Errorf("%w: cannot update markers atomically across tables %v and %v", statestore.ErrStateStore, config.KakaoTable, config.TossTable)
	}
	return s.patch(ctx, config.KakaoTable, id, map[string]any{
		"kakao_last_send_no": numeric(markers.KakaoLastSendNo),
		"toss_last_send_key": markers.TossLastSendKey,
	})
}

func (s *Session) patch(ctx context.Context, table, id string, values map[string]any) (err error) {
	defer func(begin time.Time) {
		zerolog.Ctx(ctx).Info().
			Dur("elapsed", time.Since(begin)).
			Err(err).
			Str("table", table).
			Str("id", id).
			Interface("values", values).
			Msg("updated send state")
	}(time.Now())

	var rows []json.RawMessage
	resp, err := s.request(ctx).
		SetPathParam("table", table).
		SetQueryParam("id", "eq."+id).
		SetHeader("Prefer", "return=representation").
		SetBody(values).
		SetResult(&rows).
		Patch("/rest/v1/{table}")
	if err != nil {
		return fmt.Errorf("%w: failed to update %v: %w", statestore.ErrStateStore, table, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: failed to update %v: status %d: %v", statestore.ErrStateStore, table, resp.StatusCode(), resp.String())
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: failed to update %v: no row with id %v", statestore.ErrStateStore, table, id)
	}
	return nil
}

// Close signs the session out.
func (s *Session) Close(ctx context.Context) error {
	resp, err := s.request(ctx).Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("%w: failed to sign out: %w", statestore.ErrStateStore, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: failed to sign out: status %d", statestore.ErrStateStore, resp.StatusCode())
	}
	zerolog.Ctx(ctx).Info().Msg("signed out of supabase")
	return nil
}

// numeric keeps integer markers as JSON numbers so they land in integer columns.
func numeric(v string) any {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return json.Number(v)
	}
	return v
}
