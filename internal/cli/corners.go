package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/render/sink"
	"github.com/matzehuels/cladding/pkg/scene"
)

// cornersCommand creates the corners command, which draws how the regions
// of a scene meet.
func (c *CLI) cornersCommand() *cobra.Command {
	var (
		output    string
		format    string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "corners [scene.json|scene.toml]",
		Short: "Draw the corner relations of a scene",
		Long: `Draw the corner relations of a scene as a Graphviz graph.

Every region is a node labelled with its corner classification; an edge joins
each pair of perpendicular regions. Internal-corner regions are filled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be dot or svg)", format)
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Layout.PerpendicularThreshold
			}

			sc, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			regions, err := sc.Regions()
			if err != nil {
				return err
			}

			data := []byte(sink.CornersDOT(regions, threshold))
			if format == "svg" {
				if data, err = sink.RenderCornersSVG(cmd.Context(), string(data)); err != nil {
					return err
				}
			}

			if output == "" {
				output = basePath("", args[0]) + ".corners." + format
			}
			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Corner diagram for %d regions", len(regions))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.corners.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "dot product below which normals count as perpendicular")

	return cmd
}
