package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amire/crewboard/internal/client"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/notes"
	"github.com/amire/crewboard/internal/notify"
	"github.com/amire/crewboard/internal/registry"
)

// clientApp is what every client command works against: the API client,
// the registries on top of it and the terminal they report to.
type clientApp struct {
	cfg      *config.Config
	logger   *logger.Logger
	api      *client.Client
	store    *registry.Store
	notifier notify.Notifier
	notes    *notes.File
	loc      *time.Location
	out      io.Writer
}

func newClientApp(cmd *cobra.Command) (*clientApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := cfg.Client.Location()
	if err != nil {
		return nil, err
	}

	// stdout belongs to the command output
	logCfg := cfg.Logger
	logCfg.Output = "stderr"
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	api, err := client.NewFromConfig(cfg.Client, appLogger)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	notifier := notify.Multi(notify.NewConsole(out), notify.NewLogNotifier(appLogger))
	store := registry.NewStore(api, notifier, registry.WithLocation(loc), registry.WithLogger(appLogger))

	return &clientApp{
		cfg:      cfg,
		logger:   appLogger,
		api:      api,
		store:    store,
		notifier: notifier,
		notes:    notes.NewFile(cfg.Client.NotesFile),
		loc:      loc,
		out:      out,
	}, nil
}

func (a *clientApp) close() {
	_ = a.logger.Close()
}

// load fetches jobs and team. A missing session is reported as such rather
// than as an empty board.
func (a *clientApp) load(ctx context.Context) error {
	if !a.api.Authenticated() {
		return errNotLoggedIn
	}
	if err := a.store.Load(ctx); err != nil {
		if errors.Is(err, entities.ErrNotAuthenticated) {
			return errNotLoggedIn
		}
		return err
	}
	return nil
}

func (a *clientApp) today() entities.DateKey {
	k, _ := entities.DateKeyIn(time.Now(), a.loc)
	return k
}

// day resolves a day argument; "today" and "tomorrow" are accepted
// alongside YYYY-MM-DD.
func (a *clientApp) day(arg string) (entities.DateKey, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "today":
		return a.today(), nil
	case "tomorrow":
		return a.today().AddDays(1)
	}
	return entities.ParseDateKey(arg, a.loc)
}

func (a *clientApp) days(args []string) (entities.DateSet, error) {
	out := make(entities.DateSet, 0, len(args))
	for _, arg := range args {
		k, err := a.day(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

var errNotLoggedIn = errors.New("not logged in, run `crewboard login` first")

// runClient wires a clientApp for fn and tears it down afterwards.
func runClient(fn func(cmd *cobra.Command, app *clientApp, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp(cmd)
		if err != nil {
			return err
		}
		defer app.close()
		return fn(cmd, app, args)
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
