package job

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/morningfinancial/morning-financial/feed"
	"github.com/morningfinancial/morning-financial/sms"
	"github.com/morningfinancial/morning-financial/statestore"
)

var (
	ErrConfigMissing   = errors.New("required configuration missing or invalid")
	ErrInvalidTemplate = errors.New("invalid message template")
)

// ConfigMissingError lists every required variable that was empty.
type ConfigMissingError struct {
	Names []string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %v", strings.Join(e.Names, ", "))
}

func (e *ConfigMissingError) Is(target error) bool { return target == ErrConfigMissing }

// DispatchError means the gateway answered with something other than 200.
type DispatchError struct {
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("sms gateway returned status %d: %v", e.StatusCode, e.Body)
}

func (e *DispatchError) Is(target error) bool { return target == sms.ErrDispatch }

// StatusCode maps a run outcome to the status reported by the Lambda handler.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusNoContent
	case errors.Is(err, ErrConfigMissing), errors.Is(err, ErrInvalidTemplate):
		return http.StatusInternalServerError
	case errors.Is(err, feed.ErrFetch), errors.Is(err, feed.ErrEmptyFeed), errors.Is(err, sms.ErrDispatch):
		return http.StatusBadGateway
	case errors.Is(err, statestore.ErrStateStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
