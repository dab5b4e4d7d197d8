package dispatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tinyland-inc/picorelay/pkg/logger"
	"github.com/tinyland-inc/picorelay/pkg/messages"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// Dispatcher routes incoming updates through an ordered filter chain
// and forwards handler results to the outbound pipeline. Registration
// order is evaluation order; there is no reordering by specificity.
type Dispatcher struct {
	sender *messages.Sender

	mu      sync.RWMutex
	filters []Filter
	startup []func(ctx context.Context) error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSender replaces the default outbound sender.
func WithSender(s *messages.Sender) DispatcherOption {
	return func(d *Dispatcher) { d.sender = s }
}

func NewDispatcher(api telegram.API, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender: messages.NewSender(api),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register appends a filter to the chain.
func (d *Dispatcher) Register(f Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = append(d.filters, f)
}

// Remove drops a previously registered filter, matched by identity.
func (d *Dispatcher) Remove(f Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = slices.DeleteFunc(d.filters, func(have Filter) bool {
		return have == f
	})
}

// RegisterStartup appends a hook run once before updates flow.
func (d *Dispatcher) RegisterStartup(fn func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startup = append(d.startup, fn)
}

// OnUpdate registers a handler for updates carrying all the named
// top-level fields. No fields means every update.
func (d *Dispatcher) OnUpdate(fn HandlerFunc, required ...string) *UpdateFilter {
	f := NewUpdateFilter(fn, required...)
	d.Register(f)
	return f
}

// OnMessage registers a handler for message updates carrying all the
// named message fields.
func (d *Dispatcher) OnMessage(fn MessageHandlerFunc, required ...string) *MessageFilter {
	f := NewMessageFilter(fn, required...)
	d.Register(f)
	return f
}

// OnCommand registers a handler for one slash command.
func (d *Dispatcher) OnCommand(command, username string, fn CommandHandlerFunc) *CommandFilter {
	f := NewCommandFilter(command, username, fn)
	d.Register(f)
	return f
}

// Startup runs the registered startup hooks in order. A failing hook
// is logged and does not stop the remaining hooks.
func (d *Dispatcher) Startup(ctx context.Context) {
	d.mu.RLock()
	hooks := slices.Clone(d.startup)
	d.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			logger.ErrorCF("dispatch", "Startup hook failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
}

// ProcessUpdate dispatches one update through the filter chain. Each
// update is handled fully before the caller feeds the next one; the
// ordering guarantees depend on that.
func (d *Dispatcher) ProcessUpdate(ctx context.Context, u *telegram.Update) {
	dispatchID := uuid.NewString()
	target := DeriveTarget(u)

	d.mu.RLock()
	filters := slices.Clone(d.filters)
	d.mu.RUnlock()

	logger.DebugCF("dispatch", "Processing update", map[string]any{
		"dispatch_id": dispatchID,
		"update_id":   u.UpdateID,
		"filters":     len(filters),
	})

	for i, f := range filters {
		match, err := f.Match(u)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			logger.ErrorCF("dispatch", "Filter predicate failed", map[string]any{
				"dispatch_id": dispatchID,
				"filter":      i,
				"error":       err.Error(),
			})
			continue
		}

		result, err := f.Handle(ctx, u, match)

		var abort *AbortProcessing
		if errors.As(err, &abort) {
			if abort.Value != nil {
				d.sendResult(ctx, abort.Value, target, dispatchID)
			}
			logger.DebugCF("dispatch", "Processing aborted by handler", map[string]any{
				"dispatch_id": dispatchID,
				"filter":      i,
			})
			return
		}
		if err != nil {
			// One misbehaving handler must not block the others.
			logger.ErrorCF("dispatch", "Handler failed", map[string]any{
				"dispatch_id": dispatchID,
				"filter":      i,
				"error":       err.Error(),
			})
			continue
		}

		d.sendResult(ctx, result, target, dispatchID)
	}
}

// sendResult coerces a handler return value into sendable messages and
// sends them in order. A failed send is logged and dropped; subsequent
// messages in the batch still go out.
func (d *Dispatcher) sendResult(ctx context.Context, result any, target messages.Target, dispatchID string) {
	for _, msg := range d.coerce(result) {
		if _, err := d.sender.Send(ctx, msg, target); err != nil {
			logger.ErrorCF("dispatch", "Send failed", map[string]any{
				"dispatch_id": dispatchID,
				"error":       err.Error(),
			})
		}
	}
}

// coerce maps a handler return value to zero or more sendables:
// nil and false mean no send, a bare string becomes an unformatted
// text message, sendables pass through, and slices coerce per element.
func (d *Dispatcher) coerce(result any) []messages.Sendable {
	switch v := result.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return nil
		}
	case string:
		msg, err := messages.NewText(v)
		if err != nil {
			logger.WarnCF("dispatch", "Dropping empty text result", map[string]any{
				"error": err.Error(),
			})
			return nil
		}
		return []messages.Sendable{msg}
	case messages.Sendable:
		return []messages.Sendable{v}
	case []messages.Sendable:
		return v
	case []any:
		var out []messages.Sendable
		for _, item := range v {
			out = append(out, d.coerce(item)...)
		}
		return out
	case []string:
		var out []messages.Sendable
		for _, item := range v {
			out = append(out, d.coerce(item)...)
		}
		return out
	}
	logger.WarnCF("dispatch", "Unexpected plugin result", map[string]any{
		"type": fmt.Sprintf("%T", result),
	})
	return nil
}
