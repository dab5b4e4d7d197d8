package messages

import (
	"fmt"

	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// ForwardMessage is one forwardMessage call.
type ForwardMessage struct {
	Options

	MessageID  int64
	FromChatID int64
}

// NewForward requires both source references; a zero id is rejected at
// construction, not at send time.
func NewForward(messageID, fromChatID int64, opts ...Option) (*ForwardMessage, error) {
	if messageID == 0 {
		return nil, fmt.Errorf("message id: %w", ErrInvalidReference)
	}
	if fromChatID == 0 {
		return nil, fmt.Errorf("from chat id: %w", ErrInvalidReference)
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &ForwardMessage{
		Options:    options,
		MessageID:  messageID,
		FromChatID: fromChatID,
	}, nil
}

func (m *ForwardMessage) IsEmpty() bool {
	return m.MessageID == 0 || m.FromChatID == 0
}

func (m *ForwardMessage) Request(t Target) (telegram.Request, error) {
	if m.IsEmpty() {
		return telegram.Request{}, ErrInvalidReference
	}
	params := map[string]any{
		"from_chat_id": m.FromChatID,
		"message_id":   m.MessageID,
	}
	m.Options.apply(params, t)
	// Forwards address a chat, never a reply thread.
	delete(params, "reply_to_message_id")
	return telegram.Request{Method: "forwardMessage", Params: params}, nil
}

func (m *ForwardMessage) retryBound() int {
	return retry.TextMaxRetries
}
