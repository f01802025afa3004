package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/azybler/graphembed/pkg/embedder"
	"github.com/azybler/graphembed/pkg/gedge"
	"github.com/azybler/graphembed/pkg/graphview"
	"github.com/azybler/graphembed/pkg/history"
)

func newEmbedCmd() *cobra.Command {
	var (
		inputPath     string
		outputPath    string
		dimensions    int
		hintDimension int
		maxIterations int
		seed          int64
		indexVariant  string
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Run an embedding to convergence and write its position history",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()

			parsed, err := gedge.Parse(f)
			if err != nil {
				return fmt.Errorf("parsing edge list: %w", err)
			}
			log.Info().Int("num_nodes", parsed.NumNodes).Int("num_edges", len(parsed.Edges)).Msg("loaded graph")

			graph := graphview.Build(parsed.Edges, parsed.NumNodes, dimensions, hintDimension)
			if components := graphview.Components(graph); len(components) > 1 {
				log.Warn().Int("components", len(components)).Msg("graph is disconnected; components will drift apart independently")
			}

			cfg := embedder.DefaultConfig()
			cfg.D = dimensions
			cfg.H = hintDimension
			if maxIterations > 0 {
				cfg.MaxIterations = maxIterations
			}
			if seed != 0 {
				cfg.Seed = seed
			}
			switch indexVariant {
			case "brute_force":
				cfg.Index = embedder.IndexBruteForce
			case "dynamic":
				cfg.Index = embedder.IndexDynamic
			case "tree", "":
				cfg.Index = embedder.IndexTree
			default:
				return fmt.Errorf("unknown index variant %q", indexVariant)
			}

			engine := embedder.NewRandom(graph, cfg, log)

			start := time.Now()
			engine.Embed(func(e *embedder.Engine) {
				if e.Iteration()%50 == 0 {
					log.Info().Int("iteration", e.Iteration()).Float32("last_max_delta", e.LastMaxDelta()).Msg("embedding")
				}
			})
			log.Info().
				Int("iterations", engine.Iteration()).
				Dur("elapsed", time.Since(start)).
				Msg("embedding complete")

			w, err := history.Create(outputPath, parsed.NumNodes, dimensions)
			if err != nil {
				return fmt.Errorf("creating history file: %w", err)
			}
			for _, snap := range engine.History() {
				if err := w.Append(uint64(snap.Iteration), snap.Positions); err != nil {
					_ = w.Close()
					return fmt.Errorf("writing snapshot: %w", err)
				}
			}
			if err := w.Append(uint64(engine.Iteration()), engine.Positions()); err != nil {
				_ = w.Close()
				return fmt.Errorf("writing final snapshot: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("closing history file: %w", err)
			}
			log.Info().Str("output", outputPath).Msg("wrote position history")
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to edge-list graph file (required)")
	cmd.Flags().StringVar(&outputPath, "output", "history.bin", "path to write the binary position history")
	cmd.Flags().IntVar(&dimensions, "dim", 2, "embedding dimension D")
	cmd.Flags().IntVar(&hintDimension, "hint-dim", 2, "reference dimension H for the weight formula")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "override the default iteration cap (0 = default)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the default PRNG seed (0 = default)")
	cmd.Flags().StringVar(&indexVariant, "index", "tree", "spatial index: tree, brute_force, or dynamic")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
