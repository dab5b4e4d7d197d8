package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal"
	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal/initcfg"
	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal/poll"
	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal/status"
	"github.com/tinyland-inc/picorelay/cmd/picorelay/internal/version"
)

func NewPicorelayCommand() *cobra.Command {
	short := fmt.Sprintf("picorelay - Telegram update dispatcher v%s", internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "picorelay",
		Short:   short,
		Example: "picorelay poll",
	}

	cmd.AddCommand(
		initcfg.NewInitCommand(),
		poll.NewPollCommand(),
		status.NewStatusCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewPicorelayCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
