// Package signer builds the HMAC-SHA256 Authorization header expected by the
// SMS gateway.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is ISO-8601 with microseconds and a numeric UTC offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

type Signer struct {
	apiKey    string
	apiSecret string

	now  func() time.Time
	salt func() string
}

type Option func(*Signer)

// WithClock replaces the wall clock used for the Date field.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// WithSalt replaces the salt source.
func WithSalt(salt func() string) Option {
	return func(s *Signer) {
		s.salt = salt
	}
}

func New(apiKey, apiSecret string, opts ...Option) *Signer {
	s := &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
		salt:      Salt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Header returns a freshly signed header set. Every call draws a new
// timestamp and salt.
func (s *Signer) Header() http.Header {
	date := Timestamp(s.now())
	salt := s.salt()

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", Authorization(s.apiKey, date, salt, Signature(s.apiSecret, date+salt)))
	return header
}

func Authorization(apiKey, date, salt, signature string) string {
	return fmt.Sprintf("HMAC-SHA256 ApiKey=%v, Date=%v, salt=%v, signature=%v", apiKey, date, salt, signature)
}

// Timestamp formats t in its own location, so local time carries the offset in
// effect at t, daylight saving included.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Salt returns a time-based uuid as 32 hex characters.
func Salt() string {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}
	return hex.EncodeToString(id[:])
}

// Signature is the hex encoded HMAC-SHA256 of msg keyed by secret.
func Signature(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
