package messages

import (
	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// Parse modes accepted by the Bot API. Empty means plain text.
const (
	ParseModePlain    = ""
	ParseModeMarkdown = "markdown"
	ParseModeHTML     = "html"
)

// TextMessage is one sendMessage call. Construction splits over-long
// text at the platform limit: the message keeps only the first chunk
// and chains the remainder as sibling messages sent immediately after,
// one call per chunk, in order.
type TextMessage struct {
	Options

	Text                  string
	ParseMode             string
	DisableWebPagePreview bool

	next *TextMessage
}

// NewText builds a plain text message, chunking at MaxTextLength.
func NewText(text string, opts ...Option) (*TextMessage, error) {
	return newText(text, ParseModePlain, opts...)
}

// NewMarkdown builds a markdown-formatted text message.
func NewMarkdown(text string, opts ...Option) (*TextMessage, error) {
	return newText(text, ParseModeMarkdown, opts...)
}

// NewHTML builds an HTML-formatted text message.
func NewHTML(text string, opts ...Option) (*TextMessage, error) {
	return newText(text, ParseModeHTML, opts...)
}

func newText(text, parseMode string, opts ...Option) (*TextMessage, error) {
	chunks, err := Split(text, MaxTextLength)
	if err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	head := &TextMessage{
		Options:               options,
		Text:                  chunks[0],
		ParseMode:             parseMode,
		DisableWebPagePreview: true,
	}
	tail := head
	for _, chunk := range chunks[1:] {
		tail.next = &TextMessage{
			Options:               options,
			Text:                  chunk,
			ParseMode:             parseMode,
			DisableWebPagePreview: true,
		}
		tail = tail.next
	}
	return head, nil
}

// Next returns the chained sibling holding the following chunk, or nil.
func (m *TextMessage) Next() *TextMessage {
	return m.next
}

func (m *TextMessage) IsEmpty() bool {
	return m.Text == ""
}

func (m *TextMessage) Request(t Target) (telegram.Request, error) {
	if m.IsEmpty() {
		return telegram.Request{}, ErrEmptyInput
	}
	params := map[string]any{
		"text":                     m.Text,
		"disable_web_page_preview": m.DisableWebPagePreview,
	}
	if m.ParseMode != ParseModePlain {
		params["parse_mode"] = m.ParseMode
	}
	m.Options.apply(params, t)
	return telegram.Request{Method: "sendMessage", Params: params}, nil
}

func (m *TextMessage) retryBound() int {
	return retry.TextMaxRetries
}
