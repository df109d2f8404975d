package chrome

import (
	"context"
	"errors"
	"strings"
)

// IsSessionInterrupted reports whether err means the browser or tab went away
// (deadline, cancellation or a closed target) rather than a content problem.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"target closed", "session closed", "websocket", "browser closed", "invalid context"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
