package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/materialize"
	"github.com/matzehuels/cladding/pkg/preview"
)

// previewRefresh is how often the view redraws while ghosts settle.
const previewRefresh = 100 * time.Millisecond

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PreviewModel - Interactive preview browser
// =============================================================================

// PreviewRunFunc produces a preview for cfg, replacing the previous one.
type PreviewRunFunc func(cfg layout.Config) (*preview.Preview, error)

type previewMsg struct {
	preview *preview.Preview
	err     error
}

type tickMsg time.Time

// PreviewModel is the bubbletea model that browses the regions of a live
// preview. Changing a setting replaces the preview; elements appear as
// ghosts and settle one by one.
type PreviewModel struct {
	Config  layout.Config
	Current *preview.Preview
	Err     error
	Busy    bool

	// Keep is set when the user accepts the preview with enter.
	Keep bool

	Cursor int
	Offset int
	Height int

	run       PreviewRunFunc
	collector *materialize.Collector
}

// NewPreviewModel creates a preview browser starting from cfg.
func NewPreviewModel(cfg layout.Config, run PreviewRunFunc, collector *materialize.Collector) PreviewModel {
	return PreviewModel{Config: cfg, Height: 12, Busy: true, run: run, collector: collector}
}

func (m PreviewModel) Init() tea.Cmd {
	return tea.Batch(m.rerun(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(previewRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// rerun lays out the current config in the background.
func (m PreviewModel) rerun() tea.Cmd {
	cfg, run := m.Config, m.run
	return func() tea.Msg {
		p, err := run(cfg)
		return previewMsg{preview: p, err: err}
	}
}

func (m PreviewModel) regions() []layout.RegionResult {
	if m.Current == nil || m.Current.Result == nil {
		return nil
	}
	return m.Current.Result.Regions
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		m.Busy = false
		m.Err = msg.err
		if msg.err == nil {
			m.Current = msg.preview
			if n := len(m.regions()); m.Cursor >= n {
				m.Cursor, m.Offset = max(n-1, 0), 0
			}
		}
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 3)
	}
	return m, nil
}

func (m PreviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		if m.Current != nil {
			m.Keep = true
			return m, tea.Quit
		}
		return m, nil
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.regions())-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
		return m, nil
	}

	if m.Busy || !m.toggle(msg.String()) {
		return m, nil
	}
	m.Busy = true
	return m, m.rerun()
}

// toggle applies the setting bound to key and reports whether it changed
// anything.
func (m *PreviewModel) toggle(key string) bool {
	c := &m.Config
	switch key {
	case "r":
		c.Seed++
	case "n":
		c.RandomizeLengths = !c.RandomizeLengths
		c.RandomizeHeights = c.RandomizeLengths
	case "p":
		if c.PatternStyle == grid.StackBond {
			c.PatternStyle = grid.RunningBond
		} else {
			c.PatternStyle = grid.StackBond
		}
	case "a":
		all := grid.Anchors()
		i := slices.Index(all, c.StartAnchor)
		c.StartAnchor = all[(i+1)%len(all)]
	case "s":
		c.SmallPieceRemoval = !c.SmallPieceRemoval
	case "c":
		c.PreserveCorners = !c.PreserveCorners
	default:
		return false
	}
	return true
}

// settled counts the elements per region that have reached their final
// appearance.
func (m PreviewModel) settled() (map[string]int, int) {
	out := make(map[string]int)
	if m.Current == nil || m.collector == nil {
		return out, 0
	}
	total := 0
	for _, e := range m.collector.Elements(m.Current.Result.RunID) {
		if e.Alpha >= 1 {
			out[e.Panel.RegionID]++
			total++
		}
	}
	return out, total
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Cladding Preview"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ region  r reseed  n randomize  p pattern  a anchor  s small pieces  c corners  ⏎ keep  q quit"))
	b.WriteString("\n\n")

	c := m.Config
	fmt.Fprintf(&b, "%s %s  %s %s  %s %d  %s %v  %s %v\n\n",
		listDimStyle.Render("pattern"), c.PatternStyle,
		listDimStyle.Render("anchor"), c.StartAnchor,
		listDimStyle.Render("seed"), c.Seed,
		listDimStyle.Render("random"), c.RandomizeLengths,
		listDimStyle.Render("small pieces"), c.SmallPieceRemoval)

	switch {
	case m.Err != nil:
		b.WriteString(StyleError.Render("preview failed: " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	case m.Current == nil:
		b.WriteString(listDimStyle.Render("laying out..."))
		b.WriteString("\n")
		return b.String()
	}

	res := m.Current.Result
	perRegion, total := m.settled()

	all := regionRows(res)
	end := min(m.Offset+m.Height, len(all))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rr := res.Regions[i]
		ghosts := fmt.Sprintf("%d/%d", perRegion[rr.ID], rr.Created)
		rows = append(rows, slices.Concat([]string{cursor}, all[i][:6], []string{ghosts}))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Region", "Corner", "Size", "Rows", "Elements", "Trimmed", "Settled").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(res.Regions) {
				return lipgloss.NewStyle()
			}
			if res.Regions[idx].Skipped {
				return listDimStyle
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.Cursor < len(res.Regions) {
		b.WriteString(regionDetail(res.Regions[m.Cursor]))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("  run %s · %d elements · %d settled", shortID(res.RunID), res.Created, total)
	if m.Busy {
		status += " · updating"
	}
	b.WriteString(listDimStyle.Render(status))
	return b.String()
}

// regionDetail describes the selected region on one line.
func regionDetail(rr layout.RegionResult) string {
	if rr.Skipped {
		return StyleWarning.Render("  " + rr.Error)
	}
	b := rr.Bounds
	return listDimStyle.Render(fmt.Sprintf("  bounds [%.0f, %.0f] × [%.0f, %.0f] · start (%.0f, %.0f) · seed %d",
		b.Left, b.Right, b.Bottom, b.Top, rr.Start.X, rr.Start.Y, rr.Seed))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
