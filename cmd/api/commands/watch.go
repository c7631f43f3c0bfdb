package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/client"
)

// NewWatchCommand follows the server's change feed
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print job and team changes as they happen",
		Args:  cobra.NoArgs,
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if !app.api.Authenticated() {
				return errNotLoggedIn
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(app.out, mutedStyle.Render("Watching for changes, Ctrl-C to stop."))
			return app.api.Watch(ctx, func(ev client.ChangeEvent) {
				fmt.Fprintln(app.out, formatEvent(ev))
			})
		}),
	}
}

func formatEvent(ev client.ChangeEvent) string {
	return fmt.Sprintf("%s %s %s",
		mutedStyle.Render(ev.At.Local().Format("15:04:05")),
		headerStyle.Render(ev.Type),
		string(ev.Data))
}
