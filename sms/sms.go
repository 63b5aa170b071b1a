// Package sms posts message batches to the HMAC-authenticated SMS gateway.
package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/morningfinancial/morning-financial/signer"
	"github.com/rs/zerolog"
)

var ErrDispatch = errors.New("sms dispatch failed")

type Message struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type Batch struct {
	Messages []Message `json:"messages"`
}

// Response is the raw gateway reply. Only StatusCode is interpreted.
type Response struct {
	StatusCode int
	Body       string
}

// Messages builds one message per recipient, all sharing the same sender and text.
func Messages(recipients []string, from, text string) []Message {
	messages := make([]Message, 0, len(recipients))
	for _, to := range recipients {
		messages = append(messages, Message{
			To:   to,
			From: from,
			Text: text,
		})
	}
	return messages
}

type Client struct {
	http   *resty.Client
	url    string
	signer *signer.Signer
}

func NewClient(url string, signer *signer.Signer, timeout time.Duration) *Client {
	return &Client{
		http:   resty.New().SetTimeout(timeout),
		url:    url,
		signer: signer,
	}
}

// Dispatch sends the whole batch in one POST. A transport failure is returned
// as an error; any HTTP status is returned in the Response for the caller to judge.
func (c *Client) Dispatch(ctx context.Context, messages []Message) (*Response, error) {
	startTime := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaderMultiValues(c.signer.Header()).
		SetBody(Batch{Messages: messages}).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrDispatch, err)
	}

	zerolog.Ctx(ctx).Info().
		Dur("elapsed", time.Since(startTime)).
		Int("status", resp.StatusCode()).
		Int("messages", len(messages)).
		Msg("sms gateway request completed")

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}, nil
}
