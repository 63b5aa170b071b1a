package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/tj/assert"
)

func serve(t *testing.T, status int, body string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSince(t *testing.T) {
	testCases := map[string]struct {
		ids  []string
		last string
		want []string
	}{
		"prefix before marker": {
			ids:  []string{"103", "102", "101", "100", "99"},
			last: "100",
			want: []string{"103", "102", "101"},
		},
		"marker at head": {
			ids:  []string{"100", "99"},
			last: "100",
			want: nil,
		},
		"marker absent": {
			ids:  []string{"3", "2", "1"},
			last: "0",
			want: []string{"3", "2", "1"},
		},
		"empty list": {
			ids:  nil,
			last: "1",
			want: nil,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, slices.Collect(Since(tc.ids, tc.last)))
		})
	}
}

func TestSinceStopsEarly(t *testing.T) {
	var seen []string
	for id := range Since([]string{"c", "b", "a"}, "z") {
		seen = append(seen, id)
		if id == "b" {
			break
		}
	}
	assert.Equal(t, []string{"c", "b"}, seen)
}

func TestKakaoFetch(t *testing.T) {
	url := serve(t, http.StatusOK, `{"data":{"list":[{"no":103},{"no":102},{"no":101},{"no":100},{"no":99}]}}`)

	result, err := NewFetcher(Kakao(url, ""), time.Second).Fetch(context.Background(), "100")
	assert.Nil(t, err)
	assert.Equal(t, KakaoSourceName, result.Source)
	assert.Equal(t, "103", result.Newest)
	assert.Equal(t, []string{
		"https://brunch.co.kr/@kakaobank/103",
		"https://brunch.co.kr/@kakaobank/102",
		"https://brunch.co.kr/@kakaobank/101",
	}, result.Links)
}

func TestKakaoFetchStringIdentifiers(t *testing.T) {
	url := serve(t, http.StatusOK, `{"data":{"list":[{"no":"7"},{"no":"6"}]}}`)

	result, err := NewFetcher(Kakao(url, "https://example.com/{id}"), time.Second).Fetch(context.Background(), "6")
	assert.Nil(t, err)
	assert.Equal(t, "7", result.Newest)
	assert.Equal(t, []string{"https://example.com/7"}, result.Links)
}

func TestTossFetch(t *testing.T) {
	url := serve(t, http.StatusOK, `{"success":{"results":[{"key":"def"},{"key":"abc"}]}}`)

	result, err := NewFetcher(Toss(url, ""), time.Second).Fetch(context.Background(), "abc")
	assert.Nil(t, err)
	assert.Equal(t, TossSourceName, result.Source)
	assert.Equal(t, "def", result.Newest)
	assert.Equal(t, []string{"https://blog.toss.im/article/def"}, result.Links)
}

func TestFetchNoNewPosts(t *testing.T) {
	url := serve(t, http.StatusOK, `{"success":{"results":[{"key":"abc"},{"key":"xyz"}]}}`)

	result, err := NewFetcher(Toss(url, ""), time.Second).Fetch(context.Background(), "abc")
	assert.Nil(t, err)
	assert.Equal(t, "abc", result.Newest)
	assert.Empty(t, result.Links)
}

func TestFetchEmptyFeed(t *testing.T) {
	url := serve(t, http.StatusOK, `{"data":{"list":[]}}`)

	_, err := NewFetcher(Kakao(url, ""), time.Second).Fetch(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrEmptyFeed))

	var empty *EmptyFeedError
	assert.True(t, errors.As(err, &empty))
	assert.Equal(t, KakaoSourceName, empty.Source)
}

func TestFetchErrors(t *testing.T) {
	testCases := map[string]struct {
		status int
		body   string
		source func(url string) Source
	}{
		"server error": {
			status: http.StatusInternalServerError,
			body:   `{}`,
			source: func(url string) Source { return Kakao(url, "") },
		},
		"malformed json": {
			status: http.StatusOK,
			body:   `{"data":`,
			source: func(url string) Source { return Kakao(url, "") },
		},
		"wrong shape": {
			status: http.StatusOK,
			body:   `{"data":{"list":[{"no":1}]}}`,
			source: func(url string) Source { return Toss(url, "") },
		},
		"missing identifier": {
			status: http.StatusOK,
			body:   `{"data":{"list":[{"title":"new post"},{"no":100}]}}`,
			source: func(url string) Source { return Kakao(url, "") },
		},
		"empty key": {
			status: http.StatusOK,
			body:   `{"success":{"results":[{"key":""},{"key":"abc"}]}}`,
			source: func(url string) Source { return Toss(url, "") },
		},
		"null identifier": {
			status: http.StatusOK,
			body:   `{"success":{"results":[{"key":null}]}}`,
			source: func(url string) Source { return Toss(url, "") },
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			url := serve(t, tc.status, tc.body)
			source := tc.source(url)

			_, err := NewFetcher(source, time.Second).Fetch(context.Background(), "1")
			assert.True(t, errors.Is(err, ErrFetch))

			var fetchErr *FetchError
			assert.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, source.Name, fetchErr.Source)
			assert.Contains(t, err.Error(), source.Name)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(Toss(url, ""), time.Second).Fetch(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrFetch))
}
