package job

import (
	"errors"
	"testing"

	"github.com/tj/assert"
)

func TestCompose(t *testing.T) {
	testCases := map[string]struct {
		template string
		kakao    []string
		toss     []string
		want     string
	}{
		"kakao then toss": {
			template: "[morning financial]\n{}\nsee you tomorrow",
			kakao:    []string{"k1", "k2"},
			toss:     []string{"t1"},
			want:     "[morning financial]\nk1\nk2\nt1\nsee you tomorrow",
		},
		"indexed placeholder": {
			template: "new posts: {0}",
			toss:     []string{"t1", "t2"},
			want:     "new posts: t1\nt2",
		},
		"repeated indexed placeholder": {
			template: "{0}\n---\n{0}",
			kakao:    []string{"k1"},
			toss:     []string{"t1"},
			want:     "k1\nt1\n---\nk1\nt1",
		},
		"escaped braces": {
			template: "{{news}} {} }}",
			kakao:    []string{"k1"},
			want:     "{news} k1 }",
		},
		"no links": {
			template: "links:\n{}",
			want:     "links:\n",
		},
		"non ascii": {
			template: "오늘의 금융 소식\n{}",
			kakao:    []string{"k1"},
			want:     "오늘의 금융 소식\nk1",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := Compose(tc.template, tc.kakao, tc.toss)
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComposeInvalidTemplate(t *testing.T) {
	for _, template := range []string{
		"no placeholder",
		"{} and {}",
		"{0} and {}",
		"{} and {0}",
		"{name}",
		"{1}",
		"unclosed {",
		"stray }",
	} {
		t.Run(template, func(t *testing.T) {
			_, err := Compose(template, []string{"k1"}, nil)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.True(t, errors.Is(ValidateTemplate(template), ErrInvalidTemplate))
		})
	}
}
