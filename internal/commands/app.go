package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/config"
	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/logging"
	"github.com/balkashynov/tend/internal/notify"
	"github.com/balkashynov/tend/internal/tasks"
)

// App holds the handles every command works with. It is built once per
// invocation and closed when the command returns.
type App struct {
	Config *config.Manager
	Store  *db.Store
	Tasks  *tasks.Service
	Tray   *notify.Tray
	Log    *log.Logger
}

// loadConfig reads the config file named by --config, or the default one
func loadConfig() (*config.Manager, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

func openApp(cmd *cobra.Command) (*App, error) {
	manager, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := manager.Config()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	store, err := db.Open(db.Options{
		Path:   cfg.Database.Path,
		Debug:  logger.GetLevel() <= log.DebugLevel,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	tray := notify.NewTray(cfg.Notifications.Path)
	coordinator := notify.NewCoordinator(tray, logger)

	return &App{
		Config: manager,
		Store:  store,
		Tasks:  tasks.NewService(store, coordinator, logger),
		Tray:   tray,
		Log:    logger,
	}, nil
}

// Close waits for background task operations and closes the store
func (a *App) Close() error {
	a.Tasks.Wait()
	return a.Store.Close()
}

// withApp wraps a command function to open the app first
func withApp(fn func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.Log.Warn("failed to close store", "err", err)
			}
		}()
		return fn(cmd.Context(), cmd, args, a)
	}
}

// parseID parses a numeric ID argument
func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s ID '%s'", what, arg)
	}
	return uint(id), nil
}
