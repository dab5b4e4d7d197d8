package telegram

import "context"

// Request describes exactly one Bot API call: method name, JSON-style
// parameters, and optional file uploads forcing multipart encoding.
// Building a Request performs no I/O.
type Request struct {
	Method string
	Params map[string]any
	Files  map[string]InputFile
}

// InputFile is raw upload content for one multipart field.
type InputFile struct {
	Name string
	Data []byte
}

// Result is the decoded payload of a successful call. Single-message
// methods populate Message, sendMediaGroup populates Messages, and
// methods returning a bare boolean (sendChatAction) populate neither.
type Result struct {
	Message  *Message
	Messages []Message
}

// MessageID returns the platform-assigned id of the sent message, or 0
// when the call did not produce one.
func (r *Result) MessageID() int64 {
	if r == nil {
		return 0
	}
	if r.Message != nil {
		return r.Message.MessageID
	}
	if len(r.Messages) > 0 {
		return r.Messages[0].MessageID
	}
	return 0
}

// API is the outbound collaborator the message pipeline talks to. The
// concrete Client implements it over HTTP; tests swap in fakes.
type API interface {
	Do(ctx context.Context, req Request) (*Result, error)
}
