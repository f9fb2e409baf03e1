package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/pipeline"
)

// renderCommand creates the render command, which lays out a scene and
// renders it in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       renderFlags
		layoutFlags layoutFlags
		noCache     bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "render [scene.json|scene.toml]",
		Short: "Lay out a scene and render it (shortcut for layout + visualize)",
		Long: `Lay out a scene and render it in one step.

This is equivalent to running 'layout' followed by 'visualize' without
writing the intermediate layout document. Both stages are cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := c.layoutOptions(cmd, args[0], &layoutFlags)
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			return c.runRender(cmd.Context(), args[0], cfg, opts, &flags, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	flags.register(cmd)
	layoutFlags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, flags *renderFlags, noCache bool) error {
	ctx = withLogger(ctx, c.Logger)
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, layoutHit, err := c.computeLayout(ctx, runner, opts)
	if err != nil {
		return err
	}

	paths, renderHit, err := c.writeArtifacts(ctx, runner, res, basePath(flags.output, input), flags)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(res, layoutHit && renderHit)
	printDiagnostics(res)
	return nil
}
