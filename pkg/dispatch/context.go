package dispatch

import (
	"github.com/tinyland-inc/picorelay/pkg/messages"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// DeriveTarget computes the default reply addressing for an update by
// a fixed-priority lookup: message, channel post, edited message,
// edited channel post, callback query, inline query. The first
// populated candidate wins.
func DeriveTarget(u *telegram.Update) messages.Target {
	for _, m := range []*telegram.Message{
		u.Message,
		u.ChannelPost,
		u.EditedMessage,
		u.EditedChannelPost,
	} {
		if m != nil && m.Chat != nil {
			return messages.Target{
				ChatID:  messages.Chat(m.Chat.ID),
				ReplyTo: m.MessageID,
			}
		}
	}

	if q := u.CallbackQuery; q != nil {
		if q.Message != nil && q.Message.Chat != nil {
			return messages.Target{
				ChatID:  messages.Chat(q.Message.Chat.ID),
				ReplyTo: q.Message.MessageID,
			}
		}
		if q.From != nil {
			return messages.Target{ChatID: messages.Chat(q.From.ID)}
		}
	}

	if q := u.InlineQuery; q != nil && q.From != nil {
		return messages.Target{ChatID: messages.Chat(q.From.ID)}
	}

	return messages.Target{}
}
