package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/client"
)

// NewLoginCommand stores a session token for the client commands
func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Crewboard API",
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("CREWBOARD_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			if err := app.api.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(app.out, "Logged in as %s\n", username)
			return nil
		}),
	}
	cmd.Flags().StringP("username", "u", "", "Username")
	cmd.Flags().StringP("password", "p", "", "Password (or CREWBOARD_PASSWORD)")
	return cmd
}

// NewLogoutCommand forgets the stored session token
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			if err := app.api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Logged out")
			return nil
		}),
	}
}

// NewVersionCommand prints the client build and the server version
func NewVersionCommand(buildVersion string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server versions",
		RunE: runClient(func(cmd *cobra.Command, app *clientApp, args []string) error {
			fmt.Fprintf(app.out, "Client: %s\n", buildVersion)
			serverVersion := app.api.Version(cmd.Context())
			if serverVersion == client.VersionUnavailable {
				app.logger.Debugw("Server version unavailable", "base_url", app.cfg.Client.BaseURL)
			}
			fmt.Fprintf(app.out, "Server: %s\n", serverVersion)
			return nil
		}),
	}
}
