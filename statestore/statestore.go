// Package statestore defines the session-scoped view of the remote store that
// holds the send state singleton and the subscriber list.
package statestore

import (
	"context"
	"errors"
)

var ErrStateStore = errors.New("state store failure")

// SendState is the singleton row read at the start of every run.
type SendState struct {
	ID              string
	MessageTemplate string
	KakaoLastSendNo string
	TossLastSendKey string
}

type Subscriber struct {
	PhoneNumber string
}

// Markers are the newest identifiers sent for each feed source.
type Markers struct {
	KakaoLastSendNo string
	TossLastSendKey string
}

// Session is an authenticated handle on the store. Close signs out and must be
// called on every exit path.
type Session interface {
	SendState(ctx context.Context) (SendState, error)
	Subscribers(ctx context.Context) ([]Subscriber, error)
	UpdateKakaoMarker(ctx context.Context, id, lastSendNo string) error
	UpdateTossMarker(ctx context.Context, id, lastSendKey string) error
	// UpdateMarkers writes both markers in one operation: both change or neither does.
	UpdateMarkers(ctx context.Context, id string, markers Markers) error
	Close(ctx context.Context) error
}

// Opener signs in and returns a Session.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// PhoneNumbers returns the recipients of subs in order.
func PhoneNumbers(subs []Subscriber) []string {
	numbers := make([]string, 0, len(subs))
	for _, sub := range subs {
		numbers = append(numbers, sub.PhoneNumber)
	}
	return numbers
}
