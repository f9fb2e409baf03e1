package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/materialize"
	"github.com/matzehuels/cladding/pkg/preview"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// fakeRuns records the configs it was asked to lay out.
type fakeRuns struct {
	configs []layout.Config
}

func (f *fakeRuns) run(cfg layout.Config) (*preview.Preview, error) {
	f.configs = append(f.configs, cfg)
	res := &layout.Result{RunID: "run-" + string(cfg.PatternStyle), Created: 3}
	for _, id := range []string{"north", "east", "south"} {
		res.Regions = append(res.Regions, layout.RegionResult{ID: id, Created: 1})
	}
	return preview.New("cli", res, 0, nil), nil
}

func update(t *testing.T, m PreviewModel, msg tea.Msg) (PreviewModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(PreviewModel), cmd
}

func TestPreviewModelNavigation(t *testing.T) {
	runs := &fakeRuns{}
	m := NewPreviewModel(layout.DefaultConfig(units.Millimeter), runs.run, nil)
	m.Height = 2

	m, _ = update(t, m, m.rerun()())
	if m.Busy || m.Current == nil {
		t.Fatal("preview message should finish the initial run")
	}

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	if m.Cursor != 2 || m.Offset != 1 {
		t.Errorf("cursor, offset = %d, %d, want 2, 1", m.Cursor, m.Offset)
	}
	m, _ = update(t, m, key("up"))
	m, _ = update(t, m, key("up"))
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("cursor, offset = %d, %d, want 0, 0", m.Cursor, m.Offset)
	}

	view := m.View()
	for _, want := range []string{"Cladding Preview", "north", "Settled", "▸"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPreviewModelToggles(t *testing.T) {
	runs := &fakeRuns{}
	cfg := layout.DefaultConfig(units.Millimeter)
	m := NewPreviewModel(cfg, runs.run, nil)
	m, _ = update(t, m, m.rerun()())

	m, cmd := update(t, m, key("p"))
	if cmd == nil || !m.Busy {
		t.Fatal("changing the pattern should start a new run")
	}
	if m.Config.PatternStyle != grid.StackBond {
		t.Errorf("pattern = %s, want stack_bond", m.Config.PatternStyle)
	}

	// Keys are ignored while a run is in flight.
	m, cmd = update(t, m, key("r"))
	if cmd != nil || m.Config.Seed != cfg.Seed {
		t.Error("reseed should wait for the running preview")
	}

	m, _ = update(t, m, finish(t, m))
	m, _ = update(t, m, key("r"))
	if m.Config.Seed != cfg.Seed+1 {
		t.Errorf("seed = %d, want %d", m.Config.Seed, cfg.Seed+1)
	}
	m, _ = update(t, m, finish(t, m))

	m, _ = update(t, m, key("x"))
	if m.Busy {
		t.Error("unbound key should not start a run")
	}

	if got := len(runs.configs); got != 3 {
		t.Errorf("runs = %d, want 3", got)
	}
	if runs.configs[1].PatternStyle != grid.StackBond {
		t.Error("second run should use the toggled pattern")
	}
}

// finish runs the model's current config and returns the preview message.
func finish(t *testing.T, m PreviewModel) tea.Msg {
	t.Helper()
	return m.rerun()()
}

func TestPreviewModelKeep(t *testing.T) {
	runs := &fakeRuns{}
	m := NewPreviewModel(layout.DefaultConfig(units.Millimeter), runs.run, nil)

	m, cmd := update(t, m, key("enter"))
	if m.Keep || cmd != nil {
		t.Error("enter without a preview should do nothing")
	}

	m, _ = update(t, m, m.rerun()())
	m, cmd = update(t, m, key("enter"))
	if !m.Keep || cmd == nil {
		t.Error("enter should keep the preview and quit")
	}
}

func TestPreviewModelSettled(t *testing.T) {
	col := materialize.NewCollector()
	ctx := context.Background()
	res := &layout.Result{RunID: "r1", Regions: []layout.RegionResult{{ID: "north", Created: 2}}}
	for i := range 2 {
		p := layout.Panel{RunID: "r1", RegionID: "north", Sequence: i}
		if err := col.Materialize(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := col.Restyle(ctx, layout.Panel{RunID: "r1", Sequence: 1}, 0.3); err != nil {
		t.Fatal(err)
	}

	m := NewPreviewModel(layout.DefaultConfig(units.Millimeter), nil, col)
	m.Current = preview.New("cli", res, 0, nil)
	per, total := m.settled()
	if total != 1 || per["north"] != 1 {
		t.Errorf("settled = %v, %d, want north:1, 1", per, total)
	}
	if !strings.Contains(m.View(), "1/2") {
		t.Error("view should show settled/created per region")
	}
}
