// Package cli assembles the graphembed command-line tool from cobra
// subcommands: embed, serve, and inspect.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logLevel string

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	root := &cobra.Command{
		Use:           "graphembed",
		Short:         "Force-directed weighted graph embedding",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newEmbedCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newInspectCmd())

	return root.Execute()
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
