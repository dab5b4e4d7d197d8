package dispatch

import (
	"context"
	"sync"
)

// Blueprint records filter and startup-hook registrations before a
// dispatcher exists and replays them once attached. After attachment,
// further registrations go straight to the dispatcher; the only link
// between the two is the dispatcher reference taken at attach time.
type Blueprint struct {
	name string

	mu         sync.Mutex
	deferred   []func(d *Dispatcher)
	dispatcher *Dispatcher
}

func NewBlueprint(name string) *Blueprint {
	return &Blueprint{name: name}
}

func (b *Blueprint) Name() string {
	return b.name
}

// Register records or applies a filter registration.
func (b *Blueprint) Register(f Filter) {
	b.record(func(d *Dispatcher) { d.Register(f) })
}

// RegisterStartup records or applies a startup hook registration.
func (b *Blueprint) RegisterStartup(fn func(ctx context.Context) error) {
	b.record(func(d *Dispatcher) { d.RegisterStartup(fn) })
}

// OnUpdate mirrors Dispatcher.OnUpdate with deferred registration.
func (b *Blueprint) OnUpdate(fn HandlerFunc, required ...string) *UpdateFilter {
	f := NewUpdateFilter(fn, required...)
	b.Register(f)
	return f
}

// OnMessage mirrors Dispatcher.OnMessage with deferred registration.
func (b *Blueprint) OnMessage(fn MessageHandlerFunc, required ...string) *MessageFilter {
	f := NewMessageFilter(fn, required...)
	b.Register(f)
	return f
}

// OnCommand mirrors Dispatcher.OnCommand with deferred registration.
func (b *Blueprint) OnCommand(command, username string, fn CommandHandlerFunc) *CommandFilter {
	f := NewCommandFilter(command, username, fn)
	b.Register(f)
	return f
}

func (b *Blueprint) record(apply func(d *Dispatcher)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dispatcher != nil {
		apply(b.dispatcher)
		return
	}
	b.deferred = append(b.deferred, apply)
}

// Attach replays the recorded registrations against d, in order, and
// routes all later registrations to it directly.
func (b *Blueprint) Attach(d *Dispatcher) {
	b.mu.Lock()
	deferred := b.deferred
	b.deferred = nil
	b.dispatcher = d
	b.mu.Unlock()

	for _, apply := range deferred {
		apply(d)
	}
}
