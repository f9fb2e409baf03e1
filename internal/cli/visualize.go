package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/pipeline"
	"github.com/matzehuels/cladding/pkg/render"
	"github.com/matzehuels/cladding/pkg/render/sink"
)

// defaultMeshCells is the marching cubes resolution of solid STL meshes.
const defaultMeshCells = 200

// renderFlags are the output flags shared by visualize and render.
type renderFlags struct {
	formats string
	output  string
	width   int
	region  string
	labels  bool
	mesh    string
	cells   int
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json, stl (comma-separated)")
	fs.StringVarP(&f.output, "output", "o", "", "output base path (default: input without extension)")
	fs.IntVar(&f.width, "width", pipeline.DefaultWidth, "sheet width in pixels")
	fs.StringVar(&f.region, "region", "", "render only this region")
	fs.BoolVar(&f.labels, "labels", false, "draw element sequence numbers")
	fs.StringVar(&f.mesh, "mesh", sink.MeshPrism, "STL mesh: prism (one box per element), solid (unioned per region)")
	fs.IntVar(&f.cells, "cells", defaultMeshCells, "marching cubes cells for --mesh solid")
}

// split validates the formats and separates STL, which is written
// straight to disk, from the formats rendered into memory.
func (f *renderFlags) split() (formats []string, stl bool, err error) {
	for _, format := range parseFormats(f.formats) {
		if !render.ValidFormat(format) {
			return nil, false, pipeline.ValidateFormat(format)
		}
		if format == render.FormatSTL {
			stl = true
			continue
		}
		formats = append(formats, format)
	}
	if stl && f.mesh != sink.MeshPrism && f.mesh != sink.MeshSolid {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "unknown mesh %q (must be %s or %s)", f.mesh, sink.MeshPrism, sink.MeshSolid)
	}
	return formats, stl, nil
}

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags   renderFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render drawings or meshes from a computed layout",
		Long: `Render drawings or meshes from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it as an SVG or PNG elevation sheet, a JSON element document, or an
STL mesh of the elements.

Use 'render' as a shortcut to go directly from a scene to output files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := readLayoutFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			paths, cached, err := c.writeArtifacts(cmd.Context(), runner, res, basePath(flags.output, args[0]), &flags)
			if err != nil {
				return err
			}
			printSuccess("Rendered %s", res.RunID)
			for _, p := range paths {
				printFile(p)
			}
			printStats(res, cached)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// writeArtifacts renders res in every requested format and writes one
// file per format next to base. It reports whether all in-memory formats
// were cached.
func (c *CLI) writeArtifacts(ctx context.Context, runner *pipeline.Runner, res *layout.Result, base string, flags *renderFlags) ([]string, bool, error) {
	formats, stl, err := flags.split()
	if err != nil {
		return nil, false, err
	}

	var (
		paths  []string
		cached bool
	)
	if len(formats) > 0 {
		opts := pipeline.Options{
			Formats: formats,
			Width:   flags.width,
			Region:  flags.region,
			Labels:  flags.labels,
			Logger:  c.Logger,
		}
		artifacts, hit, err := runner.RenderWithCacheInfo(ctx, res, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render: %w", err)
		}
		cached = hit
		for _, format := range formats {
			path := artifactPath(base, format)
			if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
				return nil, false, fmt.Errorf("write output %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}

	if stl {
		path := artifactPath(base, render.FormatSTL)
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Meshing %d elements (%s)...", res.Created, flags.mesh))
		spinner.Start()
		n, err := sink.RenderSTL(ctx, res, path, flags.mesh, flags.cells)
		if err != nil {
			spinner.StopWithError("Meshing failed")
			return nil, false, err
		}
		spinner.Stop()
		c.Logger.Debug("mesh written", "path", path, "triangles", n)
		paths = append(paths, path)
	}

	slices.Sort(paths)
	return paths, cached, nil
}

// artifactPath returns the output file of format. JSON cut lists get their
// own suffix so they never overwrite a JSON scene of the same name.
func artifactPath(base, format string) string {
	if format == render.FormatJSON {
		return base + ".cutlist.json"
	}
	return base + "." + format
}
