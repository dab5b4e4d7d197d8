package dispatch

import "errors"

// ErrNoMatch is the filter decline signal. It is expected and
// frequent: dispatch simply advances to the next filter. Returning it
// is distinct from matching with an empty result.
var ErrNoMatch = errors.New("filter did not match")

// AbortProcessing is the handler-level short-circuit: it stops filter
// iteration for the current update only. An optional substitute value
// is still sent before dispatch stops.
type AbortProcessing struct {
	Value any
}

func (e *AbortProcessing) Error() string {
	return "abort processing"
}

// Abort builds the short-circuit signal for a handler to return as its
// error. value may be nil when nothing should be sent.
func Abort(value any) *AbortProcessing {
	return &AbortProcessing{Value: value}
}
