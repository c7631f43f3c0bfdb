package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/cmd/api/commands"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Crewboard API
// @version 1.0
// @description Jobs, team members and availability for a small crew.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "crewboard",
		Short:         "Crewboard jobs and team scheduling",
		Long:          `Crewboard tracks jobs, their deadlines and working days, and when each team member is available. It ships the API server and a command line client for it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Server commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())

	// Client commands
	rootCmd.AddCommand(commands.NewVersionCommand(version))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewTeamCommand())
	rootCmd.AddCommand(commands.NewCalendarCommand())
	rootCmd.AddCommand(commands.NewTodayCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
