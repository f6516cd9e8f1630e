package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rxserver/rxserver/internal/backend"
	"github.com/rxserver/rxserver/internal/config"
	"github.com/rxserver/rxserver/internal/rxlog"
	"github.com/rxserver/rxserver/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		display    int
		verbose    bool
		logLevel   string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the X11 protocol engine core in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				log.Warn().Str("path", configPath).Msg("rxserver: file-based configuration is not supported, ignoring --config (environment variables only)")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cmd.Flags().Changed("display") {
				cfg.Display.Number = display
			}
			if verbose {
				cfg.Logging.Verbose = true
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			rxlog.Init(cfg.Logging.Level, cfg.Logging.Verbose)

			st, err := server.NewServerState(backend.NewHeadless(), cfg.Limits.MaxClients, 1920, 1080)
			if err != nil {
				return fmt.Errorf("initialize server state: %w", err)
			}
			core := server.NewCore(cfg, st)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				log.Info().Str("signal", sig.String()).Msg("rxserver: received shutdown signal")
				cancel()
			}()

			log.Info().Int("display", cfg.Display.Number).Msg("rxserver: starting")
			if err := core.Run(ctx); err != nil {
				return fmt.Errorf("server core: %w", err)
			}
			log.Info().Msg("rxserver: stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&display, "display", 0, "X display number to serve (overrides RXSERVER_DISPLAY)")
	cmd.Flags().StringVar(&configPath, "config", "", "unused; configuration is environment-only")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "force debug-level logging")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override RXSERVER_LOG_LEVEL")
	cmd.Flags().Bool("foreground", true, "run in the foreground (always true; no daemonization path)")

	return cmd
}
