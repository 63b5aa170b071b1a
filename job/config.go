package job

import "fmt"

// MarkerPolicy decides when the per-source markers advance.
type MarkerPolicy string

const (
	// AdvanceOnDispatch writes both markers only after the gateway answers 200.
	AdvanceOnDispatch MarkerPolicy = "on-dispatch"
	// AdvanceOnFetch writes each marker as soon as its feed has been fetched,
	// whatever happens to the dispatch.
	AdvanceOnFetch MarkerPolicy = "on-fetch"
)

func ParseMarkerPolicy(s string) (MarkerPolicy, error) {
	switch p := MarkerPolicy(s); p {
	case AdvanceOnDispatch, AdvanceOnFetch:
		return p, nil
	case "":
		return AdvanceOnDispatch, nil
	default:
		return "", fmt.Errorf("%w: unknown marker policy %q (want %v or %v)", ErrConfigMissing, s, AdvanceOnDispatch, AdvanceOnFetch)
	}
}

type Options struct {
	MarkerPolicy MarkerPolicy
	// SkipEmpty suppresses the dispatch when neither feed has new posts.
	// It has no effect under AdvanceOnFetch.
	SkipEmpty bool
	// AtomicMarkers writes both markers in one both-or-neither operation.
	AtomicMarkers bool
	// Dry composes and logs the message but never dispatches or writes.
	Dry bool
}

// Setting is one named configuration value.
type Setting struct {
	Name  string
	Value string
}

func Var(name, value string) Setting {
	return Setting{Name: name, Value: value}
}

// Require returns a *ConfigMissingError naming every empty setting.
func Require(settings ...Setting) error {
	var missing []string
	for _, s := range settings {
		if s.Value == "" {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return &ConfigMissingError{Names: missing}
	}
	return nil
}
