// Package bus decouples update intake from dispatch. The poller
// publishes updates onto a bounded channel and a dispatch worker
// drains it, so a rate-limited send stalls at most its own worker,
// never the intake loop.
package bus

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// ErrBusClosed is returned when publishing to a closed UpdateBus.
var ErrBusClosed = errors.New("update bus closed")

type UpdateBus struct {
	updates chan telegram.Update
	done    chan struct{}
	closed  atomic.Bool
}

func NewUpdateBus(size int) *UpdateBus {
	if size <= 0 {
		size = 100
	}
	return &UpdateBus{
		updates: make(chan telegram.Update, size),
		done:    make(chan struct{}),
	}
}

func (ub *UpdateBus) Publish(ctx context.Context, u telegram.Update) error {
	if ub.closed.Load() {
		return ErrBusClosed
	}
	select {
	case ub.updates <- u:
		return nil
	case <-ub.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ub *UpdateBus) Consume(ctx context.Context) (telegram.Update, bool) {
	select {
	case u, ok := <-ub.updates:
		return u, ok
	case <-ub.done:
		return telegram.Update{}, false
	case <-ctx.Done():
		return telegram.Update{}, false
	}
}

func (ub *UpdateBus) Close() {
	if ub.closed.CompareAndSwap(false, true) {
		close(ub.done)
	}
}
