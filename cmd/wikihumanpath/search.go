package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wikihumanpath/internal/engine"
	"wikihumanpath/internal/wiring"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <from> <to>",
		Short: "Run one bidirectional search and print each event as it arrives",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags, args[0], args[1])
		},
	}
	return cmd
}

func runSearch(cmd *cobra.Command, flags *rootFlags, from, to string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg)

	app, err := wiring.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("wiring engine: %w", err)
	}
	defer app.Caches.Flush() //nolint:errcheck // best-effort on exit; engine already flushes on terminal events

	out := cmd.OutOrStdout()
	searchID, events := app.Engine.FindPath(cmd.Context(), from, to)
	fmt.Fprintf(out, "[search_id] %s\n", searchID)

	var last engine.Event
	for ev := range events {
		printEvent(out, ev)
		last = ev
	}

	if last.Tag != engine.EventFinished {
		return fmt.Errorf("no path found: %s", last.Message)
	}
	return nil
}

func printEvent(out io.Writer, ev engine.Event) {
	switch ev.Tag {
	case engine.EventInfo:
		fmt.Fprintf(out, "[info] %s\n", ev.Message)
	case engine.EventExploring:
		fmt.Fprintf(out, "[exploring %s] visited=%d elapsed=%.1fs nodes=%s\n",
			ev.Direction, ev.Stats.Visited, ev.Stats.ElapsedSeconds, strings.Join(ev.Nodes, ", "))
	case engine.EventFinished:
		fmt.Fprintf(out, "[finished] %s\n", strings.Join(ev.Path, " -> "))
	case engine.EventNotFound:
		fmt.Fprintf(out, "[not_found] %s\n", ev.Message)
	case engine.EventError:
		fmt.Fprintf(out, "[error] %s\n", ev.Message)
	}
}
