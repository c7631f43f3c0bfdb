package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/adapters/repository"
	"github.com/amire/crewboard/internal/application/services"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/infrastructure/database"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/infrastructure/server"
	"github.com/amire/crewboard/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Crewboard API server",
		Long:  "Start the Crewboard API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				changed, err := m.Up()
				if err != nil {
					return err
				}
				reportMigration(cmd, "up", changed)
				return nil
			})
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *database.Migrator) error {
				changed, err := m.Down(steps)
				if err != nil {
					return err
				}
				reportMigration(cmd, "down", changed)
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 for all)")
	migrateCmd.AddCommand(downCmd)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("failed to get migration version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create API accounts",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			return createUser(cmd, ports.CreateUserRequest{
				Username: username,
				Password: password,
				Role:     entities.UserRole(role),
			})
		},
	}

	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("password", "", "Password, at least 8 characters (required)")
	createUserCmd.Flags().String("role", string(entities.UserRoleStaff), "User role (admin, staff, viewer)")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

func loadServerConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func runServer() error {
	cfg, appLogger, err := loadServerConfig()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Errorw("Failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting Crewboard API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case sig := <-quit:
		appLogger.Infow("Received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func withMigrator(fn func(*database.Migrator) error) error {
	cfg, appLogger, err := loadServerConfig()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db, cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	return fn(m)
}

func reportMigration(cmd *cobra.Command, direction string, changed bool) {
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
}

func createUser(cmd *cobra.Command, req ports.CreateUserRequest) error {
	cfg, appLogger, err := loadServerConfig()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := server.NewCustomValidator().Validate(&req); err != nil {
		return err
	}

	authService := services.NewAuthService(repository.NewUserRepository(db.DB), cfg.JWT, appLogger)
	user, err := authService.CreateUser(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User created successfully:\n")
	fmt.Fprintf(out, "  ID: %s\n", user.ID)
	fmt.Fprintf(out, "  Username: %s\n", user.Username)
	fmt.Fprintf(out, "  Role: %s\n", user.Role)
	return nil
}
