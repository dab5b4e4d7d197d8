package messages

// MessageWithReplies sends a top message first, then each reply
// addressed to the top message's resulting id. Nested composites in
// Replies are flattened depth-first at send time. A value is consumed
// exactly once by the pipeline and not reused.
type MessageWithReplies struct {
	Top     Sendable
	Replies []Sendable
}

func NewMessageWithReplies(top Sendable, replies ...Sendable) *MessageWithReplies {
	return &MessageWithReplies{Top: top, Replies: replies}
}

func (m *MessageWithReplies) IsEmpty() bool {
	return m.Top == nil || m.Top.IsEmpty()
}

// flatReplies expands nested MessageWithReplies values depth-first
// into the flat ordered reply list.
func (m *MessageWithReplies) flatReplies() []Sendable {
	var flat []Sendable
	for _, r := range m.Replies {
		if nested, ok := r.(*MessageWithReplies); ok {
			if nested.Top != nil {
				flat = append(flat, nested.Top)
			}
			flat = append(flat, nested.flatReplies()...)
			continue
		}
		flat = append(flat, r)
	}
	return flat
}
