package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

func TestDefaultConfigNormalizesClean(t *testing.T) {
	for _, u := range units.All() {
		t.Run(string(u), func(t *testing.T) {
			cfg := DefaultConfig(u)
			norm, diags := cfg.Normalize(1)
			if len(diags) != 0 {
				t.Fatalf("diagnostics = %v, want none", diags)
			}
			if diff := cmp.Diff(cfg, norm); diff != "" {
				t.Errorf("Normalize changed defaults (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	def := DefaultConfig(units.Millimeter)

	tests := []struct {
		name   string
		modify func(*Config)
		check  func(*testing.T, Config)
		field  string
	}{
		{
			name:   "empty lengths",
			modify: func(c *Config) { c.ElementLengths = nil },
			check: func(t *testing.T, c Config) {
				if !cmp.Equal(c.ElementLengths, def.ElementLengths) {
					t.Errorf("lengths = %v", c.ElementLengths)
				}
			},
			field: "elementLengths",
		},
		{
			name:   "non-positive height",
			modify: func(c *Config) { c.ElementHeights = []float64{300, 0} },
			check: func(t *testing.T, c Config) {
				if !cmp.Equal(c.ElementHeights, def.ElementHeights) {
					t.Errorf("heights = %v", c.ElementHeights)
				}
			},
			field: "elementHeights",
		},
		{
			name:   "negative joint",
			modify: func(c *Config) { c.JointLength = -3 },
			check: func(t *testing.T, c Config) {
				if c.JointLength != 3 {
					t.Errorf("jointLength = %v", c.JointLength)
				}
			},
			field: "jointLength",
		},
		{
			name:   "nan thickness",
			modify: func(c *Config) { c.Thickness = math.NaN() },
			check: func(t *testing.T, c Config) {
				if c.Thickness != 20 {
					t.Errorf("thickness = %v", c.Thickness)
				}
			},
			field: "thickness",
		},
		{
			name:   "herringbone",
			modify: func(c *Config) { c.PatternStyle = grid.Herringbone },
			check: func(t *testing.T, c Config) {
				if c.PatternStyle != grid.RunningBond {
					t.Errorf("pattern = %s", c.PatternStyle)
				}
			},
			field: "patternStyle",
		},
		{
			name:   "unknown anchor",
			modify: func(c *Config) { c.StartAnchor = "upper_left" },
			check: func(t *testing.T, c Config) {
				if c.StartAnchor != grid.Center {
					t.Errorf("anchor = %s", c.StartAnchor)
				}
			},
			field: "startAnchor",
		},
		{
			name:   "unknown unit",
			modify: func(c *Config) { c.Unit = "furlong" },
			check: func(t *testing.T, c Config) {
				if c.Unit != string(units.Millimeter) {
					t.Errorf("unit = %s", c.Unit)
				}
			},
			field: "unit",
		},
		{
			name: "min piece above shortest length",
			modify: func(c *Config) {
				c.SmallPieceRemoval = true
				c.MinPieceSize = 900
			},
			check: func(t *testing.T, c Config) {
				if c.MinPieceSize != 800 {
					t.Errorf("minPieceSize = %v", c.MinPieceSize)
				}
			},
			field: "minPieceSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(units.Millimeter)
			tt.modify(&cfg)
			norm, diags := cfg.Normalize(1)
			tt.check(t, norm)
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want one", diags)
			}
			if diags[0].Code != errors.ErrCodeConfiguration {
				t.Errorf("code = %s", diags[0].Code)
			}
			if !strings.HasPrefix(diags[0].Message, tt.field+":") {
				t.Errorf("message %q does not name %s", diags[0].Message, tt.field)
			}
		})
	}
}

func TestNormalizeSilentDefaults(t *testing.T) {
	cfg := Config{
		ElementLengths: []float64{800},
		ElementHeights: []float64{300},
	}
	norm, diags := cfg.Normalize(1)
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if norm.PatternStyle != DefaultPattern || norm.StartAnchor != DefaultAnchor {
		t.Errorf("pattern %s anchor %s", norm.PatternStyle, norm.StartAnchor)
	}
	if norm.Caps() != grid.DefaultCaps {
		t.Errorf("caps = %+v", norm.Caps())
	}
	if norm.PerpendicularThreshold != 0.1 {
		t.Errorf("threshold = %v", norm.PerpendicularThreshold)
	}
	if norm.Appearance != DefaultAppearance {
		t.Errorf("appearance = %+v", norm.Appearance)
	}
}

func TestNormalizeScale(t *testing.T) {
	cfg := DefaultConfig(units.Millimeter)
	norm, _ := cfg.Normalize(units.Scale(units.Millimeter, units.Inch))

	k := 0.1 / 2.54
	if math.Abs(norm.ElementLengths[0]-800*k) > 1e-9 {
		t.Errorf("lengths[0] = %v, want %v", norm.ElementLengths[0], 800*k)
	}
	if math.Abs(norm.CavityDistance-50*k) > 1e-9 {
		t.Errorf("cavity = %v, want %v", norm.CavityDistance, 50*k)
	}
	if cfg.ElementLengths[0] != 800 {
		t.Error("Normalize mutated the caller's catalog")
	}
}

func TestAppearanceHex(t *testing.T) {
	if got := DefaultAppearance.Hex(); got != "#7a7a7a" {
		t.Errorf("Hex() = %s, want #7a7a7a", got)
	}
}
