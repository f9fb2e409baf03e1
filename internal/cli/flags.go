package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/pipeline"
	"github.com/matzehuels/cladding/pkg/scene"
)

// layoutFlags are the command-line overrides of the [layout] section of
// the config file. Only flags the user set are applied.
type layoutFlags struct {
	unit        string
	pattern     string
	anchor      string
	startRow    int
	randomize   bool
	natural     bool
	unsynced    bool
	fullPiece   bool
	seed        uint64
	cavity      float64
	noCorners   bool
	smallPieces bool
	minPiece    float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.unit, "unit", "", "config unit: mm, cm, m, feet, inches (resets unit defaults)")
	fs.StringVar(&f.pattern, "pattern", "", "bond pattern: running_bond, stack_bond")
	fs.StringVar(&f.anchor, "anchor", "", "start anchor, e.g. center, top_left, bottom")
	fs.IntVar(&f.startRow, "start-row", 0, "index of the first row in the bond pattern")
	fs.BoolVar(&f.randomize, "randomize", false, "pick element lengths and heights at random")
	fs.BoolVar(&f.natural, "natural", false, "natural variation of lengths (implies --randomize)")
	fs.BoolVar(&f.unsynced, "unsynced", false, "draw a separate random sequence per region")
	fs.BoolVar(&f.fullPiece, "full-piece", false, "start every row with a full-length element")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed")
	fs.Float64Var(&f.cavity, "cavity", 0, "cavity distance in config units")
	fs.BoolVar(&f.noCorners, "no-preserve-corners", false, "do not extend bounds at corners")
	fs.BoolVar(&f.smallPieces, "small-pieces", false, "consolidate small edge pieces instead of trimming")
	fs.Float64Var(&f.minPiece, "min-piece", 0, "minimum piece length for --small-pieces")
}

// apply overrides cfg with the flags set on cmd.
func (f *layoutFlags) apply(cmd *cobra.Command, cfg *layout.Config) error {
	set := cmd.Flags().Changed

	if set("unit") {
		u, err := units.Parse(f.unit)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "--unit")
		}
		*cfg = layout.DefaultConfig(u)
	}
	if set("pattern") {
		p := grid.Pattern(f.pattern)
		if p != grid.RunningBond && p != grid.StackBond {
			return errors.New(errors.ErrCodeConfiguration, "--pattern must be %s or %s", grid.RunningBond, grid.StackBond)
		}
		cfg.PatternStyle = p
	}
	if set("anchor") {
		a := grid.ParseAnchor(f.anchor)
		if !a.Valid() {
			return errors.New(errors.ErrCodeConfiguration, "unknown anchor %q", f.anchor)
		}
		cfg.StartAnchor = a
	}
	if set("start-row") {
		cfg.StartRowIndex = f.startRow
	}
	if set("randomize") {
		cfg.RandomizeLengths, cfg.RandomizeHeights = f.randomize, f.randomize
	}
	if set("natural") {
		cfg.NaturalVariation = f.natural
		if f.natural {
			cfg.RandomizeLengths = true
		}
	}
	if set("unsynced") {
		cfg.SynchronizeAcrossRegions = !f.unsynced
	}
	if set("full-piece") {
		cfg.StartWithFullPiece = f.fullPiece
	}
	if set("seed") {
		cfg.Seed = f.seed
	}
	if set("cavity") {
		cfg.CavityDistance = f.cavity
	}
	if set("no-preserve-corners") {
		cfg.PreserveCorners = !f.noCorners
	}
	if set("small-pieces") {
		cfg.SmallPieceRemoval = f.smallPieces
	}
	if set("min-piece") {
		cfg.MinPieceSize = f.minPiece
	}
	return nil
}

// layoutOptions loads the config and the scene at path and returns the
// pipeline options of a layout run along with the config.
func (c *CLI) layoutOptions(cmd *cobra.Command, path string, flags *layoutFlags) (pipeline.Options, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, cfg, err
	}
	if err := flags.apply(cmd, &cfg.Layout); err != nil {
		return pipeline.Options{}, cfg, err
	}
	sc, err := scene.Load(path)
	if err != nil {
		return pipeline.Options{}, cfg, err
	}
	return pipeline.Options{
		Scene:  sc,
		Config: cfg.Layout,
		Seed:   cfg.Layout.Seed,
		Seeded: cmd.Flags().Changed("seed"),
		Logger: c.Logger,
	}, cfg, nil
}
