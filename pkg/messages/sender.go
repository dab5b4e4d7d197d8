package messages

import (
	"context"
	"fmt"
	"maps"

	"github.com/tinyland-inc/picorelay/pkg/logger"
	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// Sender executes sendable messages against the Bot API with the
// rate-limit retry policy applied to every call.
type Sender struct {
	api    telegram.API
	policy *retry.Policy
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithPolicy replaces the default retry policy.
func WithPolicy(p *retry.Policy) SenderOption {
	return func(s *Sender) { s.policy = p }
}

func NewSender(api telegram.API, opts ...SenderOption) *Sender {
	s := &Sender{
		api:    api,
		policy: retry.NewPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send executes msg addressed to t and returns the per-call results in
// send order. Empty messages are skipped without error. Text chunk
// chains produce one call per chunk; reply composites send the top
// message first and thread every reply to its resulting id.
func (s *Sender) Send(ctx context.Context, msg Sendable, t Target) ([]*telegram.Result, error) {
	if msg == nil || msg.IsEmpty() {
		logger.DebugC("sender", "Skipping empty message")
		return nil, nil
	}

	switch m := msg.(type) {
	case *MessageWithReplies:
		return s.sendWithReplies(ctx, m, t)
	case *TextMessage:
		return s.sendChain(ctx, m, t)
	case caller:
		res, err := s.sendOne(ctx, m, t)
		if err != nil {
			return nil, err
		}
		return []*telegram.Result{res}, nil
	default:
		return nil, fmt.Errorf("unsupported sendable %T", msg)
	}
}

// sendChain sends a text message and its chained sibling chunks as
// independent messages, in order.
func (s *Sender) sendChain(ctx context.Context, m *TextMessage, t Target) ([]*telegram.Result, error) {
	var results []*telegram.Result
	for cur := m; cur != nil; cur = cur.Next() {
		res, err := s.sendOne(ctx, cur, t)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Sender) sendWithReplies(ctx context.Context, m *MessageWithReplies, t Target) ([]*telegram.Result, error) {
	results, err := s.Send(ctx, m.Top, t)
	if err != nil {
		return results, fmt.Errorf("send top message: %w", err)
	}

	var topID int64
	if len(results) > 0 {
		topID = results[0].MessageID()
	}
	replyTarget := Target{ChatID: t.ChatID, ReplyTo: topID}

	for _, reply := range m.flatReplies() {
		res, err := s.Send(ctx, reply, replyTarget)
		results = append(results, res...)
		if err != nil {
			// Partial delivery is expected; remaining replies still go out.
			logger.ErrorCF("sender", "Reply send failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return results, nil
}

// sendOne performs a single call under the retry policy. When the
// reply target no longer exists, the call is repeated exactly once
// with the reply reference dropped.
func (s *Sender) sendOne(ctx context.Context, c caller, t Target) (*telegram.Result, error) {
	req, err := c.Request(t)
	if err != nil {
		return nil, err
	}

	res, err := s.policy.Do(ctx, c.retryBound(), func(ctx context.Context) (*telegram.Result, error) {
		return s.api.Do(ctx, req)
	})
	if err == nil {
		return res, nil
	}

	if _, hasReply := req.Params["reply_to_message_id"]; hasReply && retry.IsReplyNotFound(err) {
		logger.WarnCF("sender", "Reply target missing, resending without reply", map[string]any{
			"method": req.Method,
		})
		req.Params = maps.Clone(req.Params)
		delete(req.Params, "reply_to_message_id")
		return s.policy.Do(ctx, c.retryBound(), func(ctx context.Context) (*telegram.Result, error) {
			return s.api.Do(ctx, req)
		})
	}
	return nil, err
}
