package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// Option configures a Run.
type Option func(*runOptions)

type runOptions struct {
	logger       *log.Logger
	scale        float64
	materializer Materializer
	committer    Committer
	seed         uint64
	seeded       bool
	preview      bool
}

func newRunOptions(opts []Option) runOptions {
	o := runOptions{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// WithLogger sets the logger that receives per-region records.
func WithLogger(l *log.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithScale sets the factor converting configured lengths into geometry
// units.
func WithScale(s float64) Option {
	return func(o *runOptions) { o.scale = s }
}

// WithMaterializer sets the collaborator that creates each element.
func WithMaterializer(m Materializer) Option {
	return func(o *runOptions) { o.materializer = m }
}

// WithCommitter sets the collaborator that finalizes a non-preview run.
func WithCommitter(c Committer) Option {
	return func(o *runOptions) { o.committer = c }
}

// WithSeed fixes the base seed of runs that do not synchronize regions.
// Synchronized runs always use the configured seed.
func WithSeed(seed uint64) Option {
	return func(o *runOptions) { o.seed, o.seeded = seed, true }
}

// AsPreview marks the run as a preview. Previews are never committed.
func AsPreview() Option {
	return func(o *runOptions) { o.preview = true }
}
