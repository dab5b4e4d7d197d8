package messages

import (
	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// InputMedia is one item of a media group: a photo or video addressed
// by URL or platform file id.
type InputMedia struct {
	Type    string `json:"type"` // "photo" | "video"
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

// MediaGroupMessage is one sendMediaGroup call carrying 2 to 10 items.
type MediaGroupMessage struct {
	Options

	Media []InputMedia
}

func NewMediaGroup(media []InputMedia, opts ...Option) (*MediaGroupMessage, error) {
	if len(media) < 2 || len(media) > 10 {
		return nil, ErrGroupSize
	}
	for _, item := range media {
		if item.Type != "photo" && item.Type != "video" {
			return nil, ErrInvalidReference
		}
		if item.Media == "" {
			return nil, ErrInvalidReference
		}
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &MediaGroupMessage{Options: options, Media: media}, nil
}

// IsEmpty is true only for a group with no items at all. Construction
// enforces the 2-item minimum separately.
func (m *MediaGroupMessage) IsEmpty() bool {
	return len(m.Media) == 0
}

func (m *MediaGroupMessage) Request(t Target) (telegram.Request, error) {
	if m.IsEmpty() {
		return telegram.Request{}, ErrGroupSize
	}
	params := map[string]any{
		"media": m.Media,
	}
	m.Options.apply(params, t)
	return telegram.Request{Method: "sendMediaGroup", Params: params}, nil
}

func (m *MediaGroupMessage) retryBound() int {
	return retry.DefaultMaxRetries
}
