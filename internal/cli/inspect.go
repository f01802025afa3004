package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/azybler/graphembed/pkg/history"
	"github.com/azybler/graphembed/pkg/vector"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <history-file>",
		Short: "Print summary statistics for each snapshot in a binary position history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening history file: %w", err)
			}
			defer f.Close()

			r, err := history.OpenReader(f)
			if err != nil {
				return fmt.Errorf("reading header: %w", err)
			}
			fmt.Printf("nodes=%d dimensions=%d\n", r.N(), r.D())
			fmt.Printf("%-10s %-30s %s\n", "iteration", "centroid", "bounding_radius")

			for {
				iteration, positions, err := r.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("reading snapshot: %w", err)
				}
				centroid, radius := summarize(positions)
				fmt.Printf("%-10d %-30v %f\n", iteration, centroid, radius)
			}
			return nil
		},
	}
	return cmd
}

func summarize(positions []vector.Vector) (vector.Vector, float32) {
	if len(positions) == 0 {
		return nil, 0
	}
	d := positions[0].Dim()
	centroid := vector.Zero(d)
	for _, p := range positions {
		centroid.AddInPlace(p)
	}
	centroid = centroid.Scale(1.0 / float32(len(positions)))

	var radius float32
	for _, p := range positions {
		if dist := p.Dist(centroid); dist > radius {
			radius = dist
		}
	}
	return centroid, radius
}
