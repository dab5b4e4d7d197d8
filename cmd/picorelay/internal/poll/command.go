package poll

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal"
	"github.com/tinyland-inc/picorelay/pkg/bus"
	"github.com/tinyland-inc/picorelay/pkg/dispatch"
	"github.com/tinyland-inc/picorelay/pkg/logger"
	"github.com/tinyland-inc/picorelay/pkg/messages"
	"github.com/tinyland-inc/picorelay/pkg/poller"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

func NewPollCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "poll",
		Aliases: []string{"run"},
		Short:   "Run the bot on long polling",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return pollCmd(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func pollCmd(debug bool) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	internal.ApplyLogLevel(cfg, debug)

	client := internal.NewTelegramClient(cfg)
	dispatcher := dispatch.NewDispatcher(client)
	if len(cfg.Telegram.AllowFrom) > 0 {
		// Registered first so it gates every later filter.
		dispatcher.Register(&allowListFilter{allowed: cfg.Telegram.AllowFrom})
	}
	registerBuiltins(dispatcher, cfg.Telegram.Username)

	ub := bus.NewUpdateBus(cfg.Dispatch.QueueSize)
	p := poller.NewPoller(client, ub, dispatcher,
		poller.WithLimit(cfg.Polling.Limit),
		poller.WithTimeout(cfg.Polling.Timeout),
		poller.WithDropPending(cfg.Polling.DropPending),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoC("poll", "Starting update loop")
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.InfoC("poll", "Stopped")
	return nil
}

// allowListFilter aborts dispatch for messages whose sender is not in
// the configured allow_from list. Entries match the sender's numeric
// id or username.
type allowListFilter struct {
	allowed []string
}

func (f *allowListFilter) Match(u *telegram.Update) (any, error) {
	from := senderOf(u)
	if from == nil {
		return nil, dispatch.ErrNoMatch
	}
	id := strconv.FormatInt(from.ID, 10)
	for _, entry := range f.allowed {
		if entry == id || (from.Username != "" && entry == from.Username) {
			return nil, dispatch.ErrNoMatch
		}
	}
	return nil, nil
}

func (f *allowListFilter) Handle(_ context.Context, u *telegram.Update, _ any) (any, error) {
	logger.WarnCF("poll", "Dropping update from unlisted sender", map[string]any{
		"update_id": u.UpdateID,
	})
	return nil, dispatch.Abort(nil)
}

func senderOf(u *telegram.Update) *telegram.User {
	switch {
	case u.Message != nil:
		return u.Message.From
	case u.EditedMessage != nil:
		return u.EditedMessage.From
	case u.CallbackQuery != nil:
		return u.CallbackQuery.From
	case u.InlineQuery != nil:
		return u.InlineQuery.From
	default:
		return nil
	}
}

// registerBuiltins wires the stock handlers every deployment gets.
func registerBuiltins(d *dispatch.Dispatcher, username string) {
	d.OnCommand("ping", username, func(_ context.Context, _ *telegram.Update, _ *string) (any, error) {
		return "pong", nil
	})
	d.OnCommand("echo", username, func(_ context.Context, _ *telegram.Update, args *string) (any, error) {
		if args == nil {
			return "Nothing to echo.", nil
		}
		msg, err := messages.NewText(*args)
		if err != nil {
			return nil, err
		}
		return msg, nil
	})
}
