package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/pipeline"
)

// layoutCommand creates the layout command for computing a layout document.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		commit  bool
		table   bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [scene.json|scene.toml]",
		Short: "Compute a cladding layout from a scene",
		Long: `Compute a cladding layout from a scene.

The scene lists planar wall regions (outline points and outward normal). The
layout command classifies each region's corner, offsets it by the cavity,
lays the element grid and writes the result as a layout.json document that
the 'visualize' command renders.

Layout settings come from the [layout] section of the config file; flags
override them. Results are cached unless --commit or --no-cache is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := c.layoutOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], cfg, opts, output, noCache, commit, table)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&commit, "commit", false, "save the layout to the configured store")
	cmd.Flags().BoolVar(&table, "table", true, "print a per-region summary")
	flags.register(cmd)

	return cmd
}

// runLayout computes the layout and writes it to output.
func (c *CLI) runLayout(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, output string, noCache, commit, showTable bool) error {
	ctx = withLogger(ctx, c.Logger)
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if commit {
		st, err := newCommitStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Committer = st
	}

	res, cached, err := c.computeLayout(ctx, runner, opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := writeLayoutFile(res, outputPath); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res, cached)
	if commit {
		printDetail("Committed run %s", res.RunID)
	}
	if showTable {
		fmt.Println(regionTable(res))
	}
	printDiagnostics(res)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)
	return nil
}

// computeLayout runs the layout stage behind a spinner that follows the
// regions as they complete.
func (c *CLI) computeLayout(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*layout.Result, bool, error) {
	spinner := newSpinnerWithContext(ctx, "Laying out regions...")
	restore := trackLayout(spinner)
	defer restore()
	spinner.Start()

	prog := newProgress(loggerFromContext(ctx))
	res, cached, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	prog.done("Layout computed", "run", res.RunID, "elements", res.Created, "cached", cached)
	return res, cached, nil
}

// =============================================================================
// Layout documents
// =============================================================================

func writeLayoutFile(res *layout.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

func readLayoutFile(path string) (*layout.Result, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "layout file %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout %s", path)
	}
	if res.RunID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a layout document", path)
	}
	return &res, nil
}
