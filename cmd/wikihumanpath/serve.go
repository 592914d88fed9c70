package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikihumanpath/internal/httpapi"
	"wikihumanpath/internal/wiring"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "address to listen on")
	return cmd
}

func runServe(flags *rootFlags, addr string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg)

	app, err := wiring.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("wiring engine: %w", err)
	}
	defer app.Caches.Flush() //nolint:errcheck // best-effort on shutdown

	server := httpapi.New(app.Engine, logger)
	logger.Info().Str("addr", addr).Msg("starting HTTP gateway")
	return server.Listen(addr)
}
