// Package messages holds the outbound message pipeline: a closed set
// of sendable message variants, the text segmenter, content-type
// classification, and the sender that turns variants into Bot API
// calls with retry.
package messages

import (
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// ReplyToContext is the reply sentinel: the message replies to the
// triggering message of the dispatch context. Zero means no reply.
const ReplyToContext int64 = -1

// ChatRef addresses a chat either by numeric id or by @username.
type ChatRef struct {
	id       int64
	username string
}

func Chat(id int64) ChatRef {
	return ChatRef{id: id}
}

func ChatName(username string) ChatRef {
	return ChatRef{username: username}
}

func (r ChatRef) IsZero() bool {
	return r.id == 0 && r.username == ""
}

// Param returns the chat_id request parameter value.
func (r ChatRef) Param() any {
	if r.username != "" {
		return r.username
	}
	return r.id
}

// Target is the per-update addressing pair every send falls back to
// when a message does not name its own receiver or reply id.
type Target struct {
	ChatID  ChatRef
	ReplyTo int64
}

// Options are the attributes shared by all sendable variants.
type Options struct {
	Receiver            ChatRef
	ReplyTo             int64
	DisableNotification bool
}

func defaultOptions() Options {
	return Options{ReplyTo: ReplyToContext}
}

// Option configures the shared attributes of a sendable message.
type Option func(*Options)

// To sets an explicit receiver chat instead of the dispatch context's.
func To(chat ChatRef) Option {
	return func(o *Options) { o.Receiver = chat }
}

// InReplyTo sets an explicit reply target message id.
func InReplyTo(messageID int64) Option {
	return func(o *Options) { o.ReplyTo = messageID }
}

// WithoutReply suppresses the reply reference entirely.
func WithoutReply() Option {
	return func(o *Options) { o.ReplyTo = 0 }
}

// Silent disables the client-side notification for the message.
func Silent() Option {
	return func(o *Options) { o.DisableNotification = true }
}

// apply resolves the receiver and reply id against the dispatch target
// and writes the shared parameters into params.
func (o Options) apply(params map[string]any, t Target) {
	chat := o.Receiver
	if chat.IsZero() {
		chat = t.ChatID
	}
	params["chat_id"] = chat.Param()

	replyTo := o.ReplyTo
	if replyTo == ReplyToContext {
		replyTo = t.ReplyTo
	}
	if replyTo != 0 {
		params["reply_to_message_id"] = replyTo
	}
	if o.DisableNotification {
		params["disable_notification"] = true
	}
}

// Sendable is the closed union of outbound message variants. A value
// describes one or more platform calls; it performs no I/O itself.
type Sendable interface {
	// IsEmpty reports whether the message carries no content and must
	// be skipped rather than sent.
	IsEmpty() bool
}

// caller is the leaf-variant contract: render one platform call and
// state the retry bound for it.
type caller interface {
	Sendable
	Request(t Target) (telegram.Request, error)
	retryBound() int
}
