// Package feed fetches the Kakao Bank and Toss Bank post lists and extracts the
// posts published since the last marker.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	KakaoSourceName = "kakao"
	TossSourceName  = "toss"

	DefaultKakaoLinkTemplate = "https://brunch.co.kr/@kakaobank/{id}"
	DefaultTossLinkTemplate  = "https://blog.toss.im/article/{id}"
)

// Result holds the links of the posts newer than the marker, newest first, and
// the identifier of the newest post in the response.
type Result struct {
	Source string
	Links  []string
	Newest string
}

// Source describes one upstream provider.
type Source struct {
	Name         string
	URL          string
	LinkTemplate string

	extract func(body []byte) ([]string, error)
}

// Link substitutes id into the source's link template.
func (s Source) Link(id string) string {
	return strings.ReplaceAll(s.LinkTemplate, "{id}", id)
}

// Kakao describes the Kakao Bank brunch feed, shaped {data:{list:[{no}]}}.
func Kakao(url, linkTemplate string) Source {
	if linkTemplate == "" {
		linkTemplate = DefaultKakaoLinkTemplate
	}
	return Source{
		Name:         KakaoSourceName,
		URL:          url,
		LinkTemplate: linkTemplate,
		extract:      extractKakao,
	}
}

// Toss describes the Toss Bank blog feed, shaped {success:{results:[{key}]}}.
func Toss(url, linkTemplate string) Source {
	if linkTemplate == "" {
		linkTemplate = DefaultTossLinkTemplate
	}
	return Source{
		Name:         TossSourceName,
		URL:          url,
		LinkTemplate: linkTemplate,
		extract:      extractToss,
	}
}

// ID is a post identifier that may arrive as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return errors.New("post identifier is missing")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	}
	return nil
}

func extractKakao(body []byte) ([]string, error) {
	var resp struct {
		Data *struct {
			List *[]struct {
				No ID `json:"no"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.List == nil {
		return nil, errors.New("response has no data.list")
	}
	ids := make([]string, 0, len(*resp.Data.List))
	for i, post := range *resp.Data.List {
		if post.No == "" {
			return nil, fmt.Errorf("post %d has no identifier", i)
		}
		ids = append(ids, string(post.No))
	}
	return ids, nil
}

func extractToss(body []byte) ([]string, error) {
	var resp struct {
		Success *struct {
			Results *[]struct {
				Key ID `json:"key"`
			} `json:"results"`
		} `json:"success"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Success == nil || resp.Success.Results == nil {
		return nil, errors.New("response has no success.results")
	}
	ids := make([]string, 0, len(*resp.Success.Results))
	for i, post := range *resp.Success.Results {
		if post.Key == "" {
			return nil, fmt.Errorf("post %d has no identifier", i)
		}
		ids = append(ids, string(post.Key))
	}
	return ids, nil
}

// Since yields ids from the head of a newest-first list, stopping before the
// first id equal to last. If last never appears every id is yielded.
func Since(ids []string, last string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range ids {
			if id == last {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}

type Fetcher struct {
	source Source
	http   *resty.Client
}

func NewFetcher(source Source, timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Fetcher{
		source: source,
		http:   client,
	}
}

func (f *Fetcher) Name() string {
	return f.source.Name
}

// Fetch performs a single GET against the source and returns the posts newer
// than last.
func (f *Fetcher) Fetch(ctx context.Context, last string) (result Result, err error) {
	defer func(begin time.Time) {
		zerolog.Ctx(ctx).Info().
			Dur("elapsed", time.Since(begin)).
			Err(err).
			Str("source", f.source.Name).
			Str("last", last).
			Str("newest", result.Newest).
			Int("new", len(result.Links)).
			Msg("fetched feed")
	}(time.Now())

	resp, err := f.http.R().
		SetContext(ctx).
		Get(f.source.URL)
	if err != nil {
		return Result{}, &FetchError{Source: f.source.Name, Err: err}
	}
	if !resp.IsSuccess() {
		return Result{}, &FetchError{Source: f.source.Name, StatusCode: resp.StatusCode()}
	}

	ids, err := f.source.extract(resp.Body())
	if err != nil {
		return Result{}, &FetchError{Source: f.source.Name, StatusCode: resp.StatusCode(), Err: err}
	}
	if len(ids) == 0 {
		return Result{}, &EmptyFeedError{Source: f.source.Name}
	}

	links := []string{}
	for id := range Since(ids, last) {
		links = append(links, f.source.Link(id))
	}

	return Result{
		Source: f.source.Name,
		Links:  links,
		Newest: ids[0],
	}, nil
}
