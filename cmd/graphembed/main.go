// Command graphembed is the CLI front end over the embedder engine: it
// runs embedding jobs to completion, serves them over HTTP, and
// inspects recorded position histories.
package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/azybler/graphembed/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		zerolog.New(os.Stderr).With().Timestamp().Logger().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
