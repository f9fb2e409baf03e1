package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cladding HTTP API",
		Long: `Run the cladding HTTP API.

The server lays out scenes posted to /v1/layouts, keeps one live preview per
session under /v1/previews/{session} and stores committed layouts in the
configured store (memory or mongo). Computed layouts are cached in the
configured cache backend (file, redis or none).

Server, cache, store and log settings come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("log-file") {
				cfg.Log.File = logFile
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	if lj := fileLogWriter(cfg.Log); lj != nil {
		defer lj.Close()
		c.Logger.SetOutput(io.MultiWriter(c.logOut, lj))
		defer c.Logger.SetOutput(c.logOut)
	}

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layouts, err := newStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer layouts.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend,
		"log_file", cfg.Log.File)

	return server.New(cfg.Server, runner, layouts, c.Logger).Run(ctx)
}
