package cli

import (
	"github.com/spf13/cobra"

	"github.com/azybler/graphembed/pkg/api"
)

func newServeCmd() *cobra.Command {
	var (
		addr          string
		maxConcurrent int
		corsOrigin    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the embedding job server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg := api.DefaultConfig()
			cfg.Addr = addr
			cfg.MaxConcurrent = maxConcurrent
			cfg.CORSOrigin = corsOrigin

			jobs := api.NewJobManager(log)
			srv := api.NewServer(cfg, jobs, log)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 64, "maximum concurrent in-flight requests")
	cmd.Flags().StringVar(&corsOrigin, "cors-origin", "*", "CORS allowed origin")

	return cmd
}
