package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/cladding/pkg/observability"
)

// Spinner provides a simple progress indicator with context cancellation support.
type Spinner struct {
	message string
	width   int
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string
	mu      sync.Mutex
	once    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		width:   len(message),
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.width = max(s.width, len(message))
}

// Stop stops the spinner and clears the line. Stop is idempotent.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped due to context cancellation.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// =============================================================================
// Layout progress
// =============================================================================

// spinnerHooks shows per-region progress of a layout run on a spinner and
// forwards every event to the previously installed hooks.
type spinnerHooks struct {
	next    observability.LayoutHooks
	spinner *Spinner

	mu    sync.Mutex
	total int
	done  int
}

// trackLayout installs spinner progress hooks and returns a function that
// restores the previous hooks.
func trackLayout(s *Spinner) (restore func()) {
	prev := observability.Layout()
	observability.SetLayoutHooks(&spinnerHooks{next: prev, spinner: s})
	return func() { observability.SetLayoutHooks(prev) }
}

func (h *spinnerHooks) OnRunStart(ctx context.Context, runID string, regions int) {
	h.mu.Lock()
	h.total, h.done = regions, 0
	h.mu.Unlock()
	h.next.OnRunStart(ctx, runID, regions)
}

func (h *spinnerHooks) OnRegionComplete(ctx context.Context, regionID string, created, trimmed int, d time.Duration, err error) {
	h.mu.Lock()
	h.done++
	msg := fmt.Sprintf("Laying out regions... %d/%d (%s)", h.done, h.total, regionID)
	h.mu.Unlock()
	h.spinner.SetMessage(msg)
	h.next.OnRegionComplete(ctx, regionID, created, trimmed, d, err)
}

func (h *spinnerHooks) OnRunComplete(ctx context.Context, runID string, created, trimmed int, d time.Duration, err error) {
	h.next.OnRunComplete(ctx, runID, created, trimmed, d, err)
}
