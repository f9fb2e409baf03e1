package layout

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

func floor(id string) region.Region {
	return region.Region{
		ID:       id,
		Boundary: []geom.Vec3{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}},
		Normal:   geom.AxisZ,
	}
}

func wall(id string) region.Region {
	return region.Region{
		ID:       id,
		Boundary: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1000, Z: 0}, {X: 0, Y: 1000, Z: 1000}, {X: 0, Y: 0, Z: 1000}},
		Normal:   geom.AxisX,
	}
}

func scenarioConfig() Config {
	cfg := DefaultConfig(units.Millimeter)
	cfg.ElementLengths = []float64{800, 900, 1000}
	cfg.ElementHeights = []float64{450, 300}
	cfg.JointLength, cfg.JointWidth = 3, 3
	cfg.CavityDistance = 0
	cfg.StartAnchor = grid.TopLeft
	cfg.ForceHorizontalAlignment = true
	return cfg
}

func TestRunTopLeftScenario(t *testing.T) {
	res, err := Run(context.Background(), []region.Region{floor("floor")}, scenarioConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Regions) != 1 || res.Regions[0].Skipped {
		t.Fatalf("regions = %+v", res.Regions)
	}
	rr := res.Regions[0]
	fp := rr.Footprints[0]
	want := geom.Rect{Left: 0, Right: 800, Bottom: 550, Top: 1000}
	if math.Abs(fp.Sheet.Left-want.Left) > 1e-6 || math.Abs(fp.Sheet.Right-want.Right) > 1e-6 ||
		math.Abs(fp.Sheet.Bottom-want.Bottom) > 1e-6 || math.Abs(fp.Sheet.Top-want.Top) > 1e-6 {
		t.Errorf("first footprint = %+v, want %+v", fp.Sheet, want)
	}
	if fp.Trimmed {
		t.Error("first footprint trimmed")
	}
	if rr.Corner != region.External {
		t.Errorf("corner = %s, want external", rr.Corner)
	}
	if res.Created != len(rr.Footprints) || res.Trimmed != rr.Trimmed {
		t.Errorf("totals created %d trimmed %d, region %d/%d", res.Created, res.Trimmed, len(rr.Footprints), rr.Trimmed)
	}
	if rr.Sheet() != (geom.Rect{Right: 1000, Top: 1000}) {
		t.Errorf("Sheet() = %+v", rr.Sheet())
	}
}

func TestRunInternalCornerCavity(t *testing.T) {
	cfg := scenarioConfig()
	cfg.CavityDistance = 50

	// Siblings of the floor are the wall (1,0,0) and a second floor (0,0,1).
	res, err := Run(context.Background(), []region.Region{floor("floor"), wall("wall"), floor("floor-2")}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	rr := res.Regions[0]
	if rr.Corner != region.Internal {
		t.Fatalf("corner = %s, want internal", rr.Corner)
	}
	if got := rr.Cavity.Offset.Length(); math.Abs(got-35) > 1e-9 {
		t.Errorf("cavity offset = %v, want 35", got)
	}
	if rr.Frame.Origin.Z != 35 {
		t.Errorf("origin z = %v, want 35", rr.Frame.Origin.Z)
	}
	if !rr.Bounds.Contains(rr.LocalBounds, 0) || rr.Bounds.Width() <= rr.LocalBounds.Width() {
		t.Errorf("bounds %+v not extended past %+v", rr.Bounds, rr.LocalBounds)
	}
}

func TestRunSkipsInvalidRegion(t *testing.T) {
	bad := region.Region{ID: "sliver", Boundary: []geom.Vec3{{}, {X: 1}}, Normal: geom.AxisZ}
	res, err := Run(context.Background(), []region.Region{bad, floor("floor")}, scenarioConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || !res.Regions[0].Skipped {
		t.Fatalf("skipped = %d, regions = %+v", res.Skipped, res.Regions[0])
	}
	if res.Regions[1].Created == 0 {
		t.Error("valid region produced nothing")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != errors.ErrCodeInvalidRegion || res.Diagnostics[0].RegionID != "sliver" {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestRunElementFailure(t *testing.T) {
	var seen []int
	m := MaterializerFunc(func(_ context.Context, p Panel) error {
		if p.Index == 1 {
			return stderrors.New("scene rejected face")
		}
		seen = append(seen, p.Sequence)
		return nil
	})

	res, err := Run(context.Background(), []region.Region{floor("floor")}, scenarioConfig(), WithMaterializer(m))
	if err != nil {
		t.Fatal(err)
	}
	rr := res.Regions[0]
	if rr.Failed != 1 || res.Failed != 1 {
		t.Errorf("failed = %d/%d, want 1", rr.Failed, res.Failed)
	}
	if rr.Created != len(seen) || len(rr.Footprints) != rr.Created {
		t.Errorf("created = %d, materialized %d, footprints %d", rr.Created, len(seen), len(rr.Footprints))
	}
	for i, s := range seen {
		if s != i {
			t.Fatalf("sequence %v is not contiguous", seen)
		}
	}
	if res.Diagnostics[0].Code != errors.ErrCodeElementCreationFailure {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestRunPanels(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Thickness = 20
	var panels []Panel
	m := MaterializerFunc(func(_ context.Context, p Panel) error {
		panels = append(panels, p)
		return nil
	})
	if _, err := Run(context.Background(), []region.Region{floor("floor")}, cfg, WithMaterializer(m)); err != nil {
		t.Fatal(err)
	}
	p := panels[0]
	if p.RegionID != "floor" || p.Thickness != 20 || p.Appearance != DefaultAppearance {
		t.Errorf("panel = %+v", p)
	}
	if back := p.Back(); back[0].Z != -20 {
		t.Errorf("back face z = %v, want -20", back[0].Z)
	}
	if math.Abs(p.Area()-800*450) > 1e-6 {
		t.Errorf("area = %v", p.Area())
	}
}

func TestRunCommit(t *testing.T) {
	commits := 0
	ok := CommitterFunc(func(context.Context, *Result) error { commits++; return nil })
	failing := CommitterFunc(func(context.Context, *Result) error { return stderrors.New("transaction aborted") })

	if _, err := Run(context.Background(), []region.Region{floor("a")}, scenarioConfig(), WithCommitter(ok)); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(context.Background(), []region.Region{floor("a")}, scenarioConfig(), WithCommitter(ok), AsPreview()); err != nil {
		t.Fatal(err)
	}
	if commits != 1 {
		t.Errorf("commits = %d, want 1 (previews are not committed)", commits)
	}

	res, err := Run(context.Background(), []region.Region{floor("a")}, scenarioConfig(), WithCommitter(failing))
	if !errors.Is(err, errors.ErrCodeCommitFailure) {
		t.Fatalf("Run() = %v, want COMMIT_FAILURE", err)
	}
	if res == nil || res.Created == 0 {
		t.Error("result should still be returned on commit failure")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := MaterializerFunc(func(context.Context, Panel) error {
		cancel()
		return nil
	})

	res, err := Run(ctx, []region.Region{floor("a"), floor("b")}, scenarioConfig(), WithMaterializer(m))
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Run() = %v, want CANCELED", err)
	}
	if len(res.Regions) != 1 {
		t.Errorf("regions = %d, want only the completed first region", len(res.Regions))
	}
}

func TestRunIdempotent(t *testing.T) {
	regions := []region.Region{floor("floor"), wall("wall")}
	a, err := Run(context.Background(), regions, scenarioConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), regions, scenarioConfig())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Regions, b.Regions); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestRunSynchronizedRandom(t *testing.T) {
	cfg := scenarioConfig()
	cfg.RandomizeLengths = true
	cfg.RandomizeHeights = true
	cfg.NaturalVariation = true
	cfg.SynchronizeAcrossRegions = true

	regions := []region.Region{floor("a"), floor("b")}
	first, err := Run(context.Background(), regions, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), regions, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Regions, second.Regions); diff != "" {
		t.Errorf("synchronized runs differ:\n%s", diff)
	}
	if first.Regions[0].Seed == first.Regions[1].Seed {
		t.Error("regions share a seed")
	}
	if cmp.Equal(first.Regions[0].Footprints, first.Regions[1].Footprints) {
		t.Error("identical regions at different ordinals produced identical layouts")
	}

	cfg.SynchronizeAcrossRegions = false
	x, _ := Run(context.Background(), regions, cfg, WithSeed(99))
	y, _ := Run(context.Background(), regions, cfg, WithSeed(99))
	if x.Seed != 99 || !cmp.Equal(x.Regions, y.Regions) {
		t.Error("WithSeed did not make unsynchronized runs reproducible")
	}
}
