package job

import (
	"fmt"
	"slices"
	"strings"
)

// Compose joins the Kakao links followed by the Toss links with newlines and
// substitutes them into template.
//
// The template carries either a single {} or one or more {0}; every
// placeholder receives the same links. {{ and }} stand for literal braces.
func Compose(template string, kakao, toss []string) (string, error) {
	parts, err := splitTemplate(template)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, strings.Join(slices.Concat(kakao, toss), "\n")), nil
}

// ValidateTemplate reports whether template can be used by Compose.
func ValidateTemplate(template string) error {
	_, err := splitTemplate(template)
	return err
}

func splitTemplate(template string) ([]string, error) {
	var (
		parts []string
		b     strings.Builder
		auto  bool
	)
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unmatched '{' at offset %d", ErrInvalidTemplate, i)
			}
			switch field := template[i+1 : i+end]; field {
			case "":
				auto = true
			case "0":
			default:
				return nil, fmt.Errorf("%w: unsupported placeholder {%v}", ErrInvalidTemplate, field)
			}
			parts = append(parts, b.String())
			b.Reset()
			i += end

		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: unmatched '}' at offset %d", ErrInvalidTemplate, i)

		default:
			b.WriteByte(c)
		}
	}
	parts = append(parts, b.String())

	switch n := len(parts) - 1; {
	case n == 0:
		return nil, fmt.Errorf("%w: no placeholder", ErrInvalidTemplate)
	case auto && n > 1:
		// {} numbers itself, so a second one would need a second value
		return nil, fmt.Errorf("%w: {} must be the only placeholder, found %d", ErrInvalidTemplate, n)
	}
	return parts, nil
}
