package status

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show bot identity and webhook state",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return statusCmd()
		},
	}
}

func statusCmd() error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := internal.NewTelegramClient(cfg)

	me, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	fmt.Printf("Bot: @%s (id %d)\n", me.Username, me.ID)

	info, err := client.GetWebhookInfo(ctx)
	if err != nil {
		return fmt.Errorf("getWebhookInfo: %w", err)
	}
	if info.URL == "" {
		fmt.Println("Webhook: not set (long polling)")
	} else {
		fmt.Printf("Webhook: %s (%d pending)\n", info.URL, info.PendingUpdateCount)
	}
	if info.LastErrorMessage != "" {
		fmt.Printf("Last webhook error: %s\n", info.LastErrorMessage)
	}
	return nil
}
