// Package ddbstore adapts the DynamoDB send state and subscriber DAOs to
// statestore.Opener. AWS credentials are resolved when the session is built,
// so opening and closing a store session only brackets the run in the logs.
package ddbstore

import (
	"context"
	"fmt"

	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/morningfinancial/morning-financial/statestore/statedao"
	"github.com/morningfinancial/morning-financial/statestore/subscriberdao"
	"github.com/rs/zerolog"
)

type Store struct {
	state       *statedao.DAO
	subscribers *subscriberdao.DAO
	stateID     string
}

func New(state *statedao.DAO, subscribers *subscriberdao.DAO, stateID string) *Store {
	return &Store{
		state:       state,
		subscribers: subscribers,
		stateID:     stateID,
	}
}

func (s *Store) Open(ctx context.Context) (statestore.Session, error) {
	zerolog.Ctx(ctx).Info().Str("stateId", s.stateID).Msg("opened dynamodb state session")
	return &session{store: s}, nil
}

type session struct {
	store *Store
}

func (s *session) SendState(ctx context.Context) (statestore.SendState, error) {
	r, err := s.store.state.Get(ctx, s.store.stateID)
	if err != nil {
		return statestore.SendState{}, fmt.Errorf("%w: %w", statestore.ErrStateStore, err)
	}
	return statestore.SendState{
		ID:              r.ID,
		MessageTemplate: r.MessageTemplate,
		KakaoLastSendNo: r.KakaoLastSendNo,
		TossLastSendKey: r.TossLastSendKey,
	}, nil
}

func (s *session) Subscribers(ctx context.Context) ([]statestore.Subscriber, error) {
	records, err := s.store.subscribers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", statestore.ErrStateStore, err)
	}
	subs := make([]statestore.Subscriber, 0, len(records))
	for _, r := range records {
		subs = append(subs, statestore.Subscriber{PhoneNumber: r.PhoneNumber})
	}
	return subs, nil
}

func (s *session) UpdateKakaoMarker(ctx context.Context, id, lastSendNo string) error {
	if err := s.store.state.UpdateKakaoMarker(ctx, id, lastSendNo); err != nil {
		return fmt.Errorf("%w: %w", statestore.ErrStateStore, err)
	}
	return nil
}

func (s *session) UpdateTossMarker(ctx context.Context, id, lastSendKey string) error {
	if err := s.store.state.UpdateTossMarker(ctx, id, lastSendKey); err != nil {
		return fmt.Errorf("%w: %w", statestore.ErrStateStore, err)
	}
	return nil
}

func (s *session) UpdateMarkers(ctx context.Context, id string, markers statestore.Markers) error {
	if err := s.store.state.UpdateMarkers(ctx, id, markers.KakaoLastSendNo, markers.TossLastSendKey); err != nil {
		return fmt.Errorf("%w: %w", statestore.ErrStateStore, err)
	}
	return nil
}

func (s *session) Close(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("stateId", s.store.stateID).Msg("closed dynamodb state session")
	return nil
}
