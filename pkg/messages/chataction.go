package messages

import (
	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// Chat action kinds accepted by sendChatAction. ActionCancel clears a
// previously shown indicator.
const (
	ActionTyping          = "typing"
	ActionRecordAudio     = "record_audio"
	ActionUploadAudio     = "upload_audio"
	ActionRecordVideo     = "record_video"
	ActionUploadVideo     = "upload_video"
	ActionRecordVideoNote = "record_video_note"
	ActionUploadVideoNote = "upload_video_note"
	ActionUploadDocument  = "upload_document"
	ActionUploadPhoto     = "upload_photo"
	ActionFindLocation    = "find_location"
	ActionCancel          = ""
)

var allowedActions = map[string]bool{
	ActionTyping:          true,
	ActionRecordAudio:     true,
	ActionUploadAudio:     true,
	ActionRecordVideo:     true,
	ActionUploadVideo:     true,
	ActionRecordVideoNote: true,
	ActionUploadVideoNote: true,
	ActionUploadDocument:  true,
	ActionUploadPhoto:     true,
	ActionFindLocation:    true,
	ActionCancel:          true,
}

// ChatActionMessage is one sendChatAction call.
type ChatActionMessage struct {
	Options

	Action string
}

func NewChatAction(action string, opts ...Option) (*ChatActionMessage, error) {
	if !allowedActions[action] {
		return nil, ErrInvalidAction
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &ChatActionMessage{Options: options, Action: action}, nil
}

// IsEmpty is always false: a chat action has no content fields, the
// action kind itself is the payload.
func (m *ChatActionMessage) IsEmpty() bool {
	return false
}

func (m *ChatActionMessage) Request(t Target) (telegram.Request, error) {
	if !allowedActions[m.Action] {
		return telegram.Request{}, ErrInvalidAction
	}
	params := map[string]any{
		"action": m.Action,
	}
	m.Options.apply(params, t)
	// Chat actions are chat-scoped, a reply reference is meaningless.
	delete(params, "reply_to_message_id")
	return telegram.Request{Method: "sendChatAction", Params: params}, nil
}

func (m *ChatActionMessage) retryBound() int {
	return retry.DefaultMaxRetries
}
