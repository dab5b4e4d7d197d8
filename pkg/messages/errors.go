package messages

import "errors"

// Construction-time validation failures. These surface synchronously
// to the code building the message and are never swallowed.
var (
	ErrEmptyInput       = errors.New("empty input text")
	ErrUnknownMime      = errors.New("mime type could not be determined")
	ErrInvalidReference = errors.New("invalid message reference")
	ErrInvalidAction    = errors.New("invalid chat action")
	ErrGroupSize        = errors.New("media group requires 2 to 10 items")
)
