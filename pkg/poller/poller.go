// Package poller runs the long-polling update loop against the Bot
// API and feeds a dispatch worker through the update bus.
package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tinyland-inc/picorelay/pkg/bus"
	"github.com/tinyland-inc/picorelay/pkg/dispatch"
	"github.com/tinyland-inc/picorelay/pkg/logger"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// Poller fetches updates with getUpdates, tracking the confirmed
// offset, and publishes each one to the bus.
type Poller struct {
	client     *telegram.Client
	bus        *bus.UpdateBus
	dispatcher *dispatch.Dispatcher

	limit       int
	timeout     int
	dropPending bool
	offset      int64
	running     atomic.Bool
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithLimit sets the maximum batch size per getUpdates call.
func WithLimit(n int) PollerOption {
	return func(p *Poller) { p.limit = n }
}

// WithTimeout sets the long-poll hold time in seconds.
func WithTimeout(seconds int) PollerOption {
	return func(p *Poller) { p.timeout = seconds }
}

// WithDropPending discards updates queued server-side while the bot
// was down, instead of replaying them on startup.
func WithDropPending(drop bool) PollerOption {
	return func(p *Poller) { p.dropPending = drop }
}

func NewPoller(
	client *telegram.Client,
	ub *bus.UpdateBus,
	d *dispatch.Dispatcher,
	opts ...PollerOption,
) *Poller {
	p := &Poller{
		client:     client,
		bus:        ub,
		dispatcher: d,
		limit:      100,
		timeout:    30,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) IsRunning() bool {
	return p.running.Load()
}

// Run removes any configured webhook, starts the dispatch worker, runs
// startup hooks, then polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return errors.New("poller already running")
	}
	defer p.running.Store(false)

	// getUpdates and an active webhook are mutually exclusive.
	if err := p.client.DeleteWebhook(ctx, p.dropPending); err != nil {
		return err
	}

	me, err := p.client.GetMe(ctx)
	if err != nil {
		return err
	}
	logger.InfoCF("poller", "Polling as bot", map[string]any{
		"id":       me.ID,
		"username": me.Username,
	})

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		p.dispatchLoop(ctx)
	}()

	p.dispatcher.Startup(ctx)

	for {
		select {
		case <-ctx.Done():
			p.bus.Close()
			<-workerDone
			return ctx.Err()
		default:
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, p.limit, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				p.bus.Close()
				<-workerDone
				return ctx.Err()
			}
			logger.ErrorCF("poller", "getUpdates failed", map[string]any{
				"error": err.Error(),
			})
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			if err := p.bus.Publish(ctx, u); err != nil {
				logger.ErrorCF("poller", "Dropping update", map[string]any{
					"update_id": u.UpdateID,
					"error":     err.Error(),
				})
			}
		}
	}
}

// dispatchLoop drains the bus, one update fully dispatched before the
// next is taken.
func (p *Poller) dispatchLoop(ctx context.Context) {
	for {
		u, ok := p.bus.Consume(ctx)
		if !ok {
			return
		}
		p.dispatcher.ProcessUpdate(ctx, &u)
	}
}
