// Command wikihumanpath is the CLI entry point: a root command plus
// "search" (one-shot engine invocation) and "serve" (HTTP gateway)
// subcommands, built the way ehrlich-b-wingthing structures its command
// tree with cobra.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "wikihumanpath",
		Short: "Find a path of human Wikipedia articles between two given articles",
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "override the on-disk cache directory")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	root.AddCommand(newSearchCmd(flags))
	root.AddCommand(newServeCmd(flags))

	return root
}

// rootFlags holds the subset of Config overridable from the command line,
// the highest-priority layer over defaults/YAML/env (SPEC_FULL.md §9).
type rootFlags struct {
	configPath string
	cacheDir   string
	logLevel   string
}
