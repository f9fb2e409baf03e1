package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/materialize"
	"github.com/matzehuels/cladding/pkg/preview"
)

// previewCommand creates the preview command for browsing a scene's
// layout interactively.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		session string
		output  string
		noTUI   bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [scene.json|scene.toml]",
		Short: "Browse a live layout preview of a scene",
		Long: `Browse a live layout preview of a scene.

The preview lays the scene out as ghosted elements that settle one by one.
Changing the pattern, anchor, seed or small-piece handling replaces the
preview of the session. Press enter to keep the preview as a layout
document; quitting discards it.

With --no-tui the preview is computed once, its ghosts are waited for and
the region summary is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := c.layoutOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if err := errors.ValidateIdentifier("session", session); err != nil {
				return err
			}
			regions, err := opts.Scene.Regions()
			if err != nil {
				return err
			}
			u, err := units.Parse(opts.Config.Unit)
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, err, "layout unit")
			}
			scale, err := opts.Scene.Scale(u)
			if err != nil {
				return err
			}

			dir, err := previewDir()
			if err != nil {
				return err
			}
			store, err := preview.NewFileStore(dir)
			if err != nil {
				return err
			}
			defer store.Close()

			p := &previewSession{
				session:   session,
				regions:   regions,
				scale:     scale,
				collector: materialize.NewCollector(),
				store:     store,
			}
			if noTUI {
				p.logger = c.Logger
				return p.once(cmd.Context(), cfg.Layout, output, basePath("", args[0]))
			}
			// The terminal belongs to bubbletea while the browser runs.
			p.logger = log.New(io.Discard)
			return p.browse(cmd.Context(), cfg.Layout, output, basePath("", args[0]))
		},
	}

	cmd.Flags().StringVar(&session, "session", defaultSession, "preview session id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "layout file written on keep (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "compute the preview once without the interactive browser")
	flags.register(cmd)

	return cmd
}

// previewSession runs the previews of one CLI session.
type previewSession struct {
	session   string
	regions   []region.Region
	scale     float64
	collector *materialize.Collector
	store     preview.Store
	logger    *log.Logger
}

func (p *previewSession) service() *preview.Service {
	return &preview.Service{
		Store:        p.store,
		Materializer: p.collector,
		Remover:      p.collector,
		Logger:       p.logger,
	}
}

// run returns the PreviewRunFunc of the session.
func (p *previewSession) run(ctx context.Context) PreviewRunFunc {
	svc := p.service()
	return func(cfg layout.Config) (*preview.Preview, error) {
		return svc.Run(ctx, p.session, p.regions, cfg, layout.WithScale(p.scale))
	}
}

func (p *previewSession) once(ctx context.Context, cfg layout.Config, output, base string) error {
	spinner := newSpinnerWithContext(ctx, "Laying out preview...")
	spinner.Start()
	pv, err := p.run(ctx)(cfg)
	if err != nil {
		spinner.StopWithError("Preview failed")
		return err
	}
	spinner.SetMessage(fmt.Sprintf("Settling %d elements...", pv.Result.Created))
	if s := pv.Schedule(); s != nil {
		if err := s.Wait(ctx); err != nil {
			spinner.Stop()
			return err
		}
	}
	spinner.Stop()

	printSuccess("Preview %s (session %s)", shortID(pv.ID), p.session)
	printStats(pv.Result, false)
	fmt.Println(regionTable(pv.Result))
	printDiagnostics(pv.Result)
	if output != "" {
		return p.keep(ctx, pv, output, base)
	}
	return p.service().Discard(ctx, p.session)
}

func (p *previewSession) browse(ctx context.Context, cfg layout.Config, output, base string) error {
	model := NewPreviewModel(cfg, p.run(ctx), p.collector)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		_ = p.service().Discard(context.WithoutCancel(ctx), p.session)
		return err
	}
	m := final.(PreviewModel)
	if !m.Keep {
		if err := p.service().Discard(ctx, p.session); err != nil {
			return err
		}
		printInfo("Preview discarded")
		return nil
	}
	return p.keep(ctx, m.Current, output, base)
}

// keep writes the preview's layout as a layout document and ends the
// session.
func (p *previewSession) keep(ctx context.Context, pv *preview.Preview, output, base string) error {
	if output == "" {
		output = base + ".layout.json"
	}
	if err := writeLayoutFile(pv.Result, output); err != nil {
		return err
	}
	if err := p.service().Discard(ctx, p.session); err != nil {
		return err
	}
	printSuccess("Kept preview as layout")
	printFile(output)
	printNextStep("Render", appName+" visualize "+output)
	return nil
}
