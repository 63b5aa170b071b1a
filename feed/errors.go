package feed

import (
	"errors"
	"fmt"
)

var (
	ErrFetch     = errors.New("feed fetch failed")
	ErrEmptyFeed = errors.New("feed returned no posts")
)

// FetchError reports a transport failure, a non-2xx status or an undecodable
// body from a feed.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("failed to fetch %v feed (status %d): %v", e.Source, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("failed to fetch %v feed: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("failed to fetch %v feed: unexpected status %d", e.Source, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// EmptyFeedError means the newest marker cannot be determined.
type EmptyFeedError struct {
	Source string
}

func (e *EmptyFeedError) Error() string {
	return fmt.Sprintf("%v feed returned no posts", e.Source)
}

func (e *EmptyFeedError) Is(target error) bool { return target == ErrEmptyFeed }
