package bili

import (
	"errors"
	"fmt"
)

// ErrUnparseable marks a single feed entry that cannot be normalized.
// Callers skip the entry and continue with its siblings.
var ErrUnparseable = errors.New("unparseable feed entry")

// UpstreamError is a non-zero status code in the upstream response envelope.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: code %d: %s", e.Code, e.Message)
}
