package dispatch

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// HandlerFunc reacts to a matched update. Its return value is coerced
// into outbound messages by the dispatcher.
type HandlerFunc func(ctx context.Context, u *telegram.Update) (any, error)

// MessageHandlerFunc reacts to updates carrying a message.
type MessageHandlerFunc func(ctx context.Context, u *telegram.Update, msg *telegram.Message) (any, error)

// CommandHandlerFunc reacts to a matched command. args is nil for a
// bare command and the trimmed trailing text otherwise.
type CommandHandlerFunc func(ctx context.Context, u *telegram.Update, args *string) (any, error)

// Filter is one predicate+handler pair in the dispatch chain. Match
// must return ErrNoMatch to decline; any non-error return, including a
// nil result, means the filter applies.
type Filter interface {
	Match(u *telegram.Update) (any, error)
	Handle(ctx context.Context, u *telegram.Update, match any) (any, error)
}

// UpdateFilter matches when every named top-level field of the update
// is populated. No required fields means match-all.
type UpdateFilter struct {
	required []string
	fn       HandlerFunc
}

func NewUpdateFilter(fn HandlerFunc, required ...string) *UpdateFilter {
	return &UpdateFilter{required: required, fn: fn}
}

func (f *UpdateFilter) Match(u *telegram.Update) (any, error) {
	for _, name := range f.required {
		if !updateFieldPresent(u, name) {
			return nil, ErrNoMatch
		}
	}
	return nil, nil
}

func (f *UpdateFilter) Handle(ctx context.Context, u *telegram.Update, _ any) (any, error) {
	return f.fn(ctx, u)
}

func updateFieldPresent(u *telegram.Update, name string) bool {
	switch name {
	case "message":
		return u.Message != nil
	case "edited_message":
		return u.EditedMessage != nil
	case "channel_post":
		return u.ChannelPost != nil
	case "edited_channel_post":
		return u.EditedChannelPost != nil
	case "callback_query":
		return u.CallbackQuery != nil
	case "inline_query":
		return u.InlineQuery != nil
	default:
		return false
	}
}

// MessageFilter matches updates containing a message whose named
// fields are all populated.
type MessageFilter struct {
	required []string
	fn       MessageHandlerFunc
}

func NewMessageFilter(fn MessageHandlerFunc, required ...string) *MessageFilter {
	return &MessageFilter{required: required, fn: fn}
}

func (f *MessageFilter) Match(u *telegram.Update) (any, error) {
	if u.Message == nil {
		return nil, ErrNoMatch
	}
	for _, name := range f.required {
		if !messageFieldPresent(u.Message, name) {
			return nil, ErrNoMatch
		}
	}
	return nil, nil
}

func (f *MessageFilter) Handle(ctx context.Context, u *telegram.Update, _ any) (any, error) {
	return f.fn(ctx, u, u.Message)
}

func messageFieldPresent(m *telegram.Message, name string) bool {
	switch name {
	case "text":
		return m.Text != ""
	case "caption":
		return m.Caption != ""
	case "entities":
		return len(m.Entities) > 0
	case "photo":
		return len(m.Photo) > 0
	case "document":
		return m.Document != nil
	case "sticker":
		return m.Sticker != nil
	case "reply_to_message":
		return m.ReplyToMessage != nil
	case "forward_date":
		return m.ForwardDate != 0
	default:
		return false
	}
}

// CommandFilter matches text messages whose leading token is one of
// the generated command-string variants, extracting any trailing
// argument text. The variant set is rebuilt only when the command or
// username changes, never during matching.
type CommandFilter struct {
	fn CommandHandlerFunc

	mu       sync.RWMutex
	command  string
	username string
	variants []string
}

// NewCommandFilter builds a filter for command (without the leading
// slash). username may be empty when the bot's name is not yet known.
func NewCommandFilter(command, username string, fn CommandHandlerFunc) *CommandFilter {
	f := &CommandFilter{fn: fn}
	f.command = strings.TrimPrefix(command, "/")
	f.username = strings.TrimPrefix(username, "@")
	f.rebuild()
	return f
}

// SetUsername updates the bot username and regenerates the cached
// command strings.
func (f *CommandFilter) SetUsername(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.username = strings.TrimPrefix(username, "@")
	f.rebuild()
}

// SetCommand updates the command and regenerates the cached strings.
func (f *CommandFilter) SetCommand(command string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.command = strings.TrimPrefix(command, "/")
	f.rebuild()
}

// Command returns the bare command name.
func (f *CommandFilter) Command() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.command
}

// CommandStrings returns a copy of the cached variant set.
func (f *CommandFilter) CommandStrings() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.variants)
}

// rebuild regenerates the variant cache. Callers hold the write lock.
func (f *CommandFilter) rebuild() {
	variants := []string{
		"/" + f.command,
		"command:///" + f.command,
	}
	if f.username != "" {
		variants = append(variants,
			"/"+f.command+"@"+f.username,
			"command:///"+f.command+"@"+f.username,
		)
	}
	f.variants = variants
}

func (f *CommandFilter) Match(u *telegram.Update) (any, error) {
	if u.Message == nil || u.Message.Text == "" {
		return nil, ErrNoMatch
	}

	f.mu.RLock()
	variants := f.variants
	f.mu.RUnlock()

	text := strings.TrimSpace(u.Message.Text)
	if slices.Contains(variants, text) {
		return nil, nil // bare command, no argument text
	}
	if idx := strings.IndexByte(text, ' '); idx >= 0 && slices.Contains(variants, text[:idx]) {
		return strings.TrimSpace(text[idx+1:]), nil
	}
	return nil, ErrNoMatch
}

func (f *CommandFilter) Handle(ctx context.Context, u *telegram.Update, match any) (any, error) {
	if match == nil {
		return f.fn(ctx, u, nil)
	}
	args := match.(string)
	return f.fn(ctx, u, &args)
}
