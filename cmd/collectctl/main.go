// Command collectctl runs one-shot administrative tasks against the
// configured database: schema migrations, reset token cleanup, account
// maintenance and community score refresh. Maintenance commands are meant
// to be invoked by an operator or an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bluebuchu/collect-sub000/internal/app"
	"github.com/bluebuchu/collect-sub000/internal/config"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

// cli carries what every subcommand needs. Tests replace the loaders.
type cli struct {
	out io.Writer
	in  io.Reader

	cfg    *config.Config
	logger *slog.Logger

	configPath   string
	loadConfig   func(path string) (*config.Config, error)
	openStore    func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error)
	readPassword func(prompt string) (string, error)

	// requirePostgres rejects the in-memory backend, which would start
	// empty in this process.
	requirePostgres bool
}

func newCLI() *cli {
	c := &cli{
		out:             os.Stdout,
		in:              os.Stdin,
		loadConfig:      config.LoadFrom,
		openStore:       app.OpenStore,
		requirePostgres: true,
	}
	c.readPassword = c.promptPassword
	return c
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "collectctl",
		Short:         "Administrative tasks for the sentence collector",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg != nil {
				return nil
			}
			path := c.configPath
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			cfg, err := c.loadConfig(path)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = app.NewLogger(cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $CONFIG_PATH or ./config.yaml)")
	root.SetOut(c.out)
	root.SetIn(c.in)

	root.AddCommand(
		newMigrateCmd(c),
		newCleanupTokensCmd(c),
		newUsersCmd(c),
		newCommunitiesCmd(c),
	)
	return root
}

// withStore opens the configured backend for the duration of fn.
func (c *cli) withStore(ctx context.Context, fn func(store.Store) error) error {
	if c.requirePostgres && c.cfg.Storage.Backend != config.BackendPostgres {
		return fmt.Errorf("storage.backend must be %q, got %q", config.BackendPostgres, c.cfg.Storage.Backend)
	}
	st, err := c.openStore(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newCLI()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "collectctl: %v\n", err)
		os.Exit(1)
	}
}
