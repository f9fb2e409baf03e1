package ghost

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"

	"github.com/matzehuels/cladding/pkg/core/layout"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestSchedulerOrder(t *testing.T) {
	s := NewScheduler(context.Background(), time.Millisecond, quiet())
	defer s.Cancel()

	var mu sync.Mutex
	var got []int
	for _, i := range []int{3, 0, 2, 1, 4} {
		s.Schedule(i, func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("fired in order %v, want ascending", got)
		}
	}
	if s.Fired() != 5 || s.Pending() != 0 {
		t.Errorf("fired %d pending %d", s.Fired(), s.Pending())
	}
}

func TestSchedulerDelay(t *testing.T) {
	s := NewScheduler(context.Background(), 20*time.Millisecond, quiet())
	defer s.Cancel()

	start := time.Now()
	firedAt := make(chan time.Duration, 1)
	s.Schedule(3, func(context.Context) { firedAt <- time.Since(start) })

	select {
	case d := <-firedAt:
		if d < 50*time.Millisecond {
			t.Errorf("task at index 3 fired after %v, want about 60ms", d)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("task never fired")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(context.Background(), time.Hour, quiet())
	ran := false
	s.Schedule(1, func(context.Context) { ran = true })
	s.Schedule(2, func(context.Context) { ran = true })

	s.Cancel()
	s.Cancel()

	if ran {
		t.Error("canceled task ran")
	}
	if s.Dropped() != 2 || s.Pending() != 0 {
		t.Errorf("dropped %d pending %d", s.Dropped(), s.Pending())
	}

	s.Schedule(0, func(context.Context) { ran = true })
	if s.Dropped() != 3 {
		t.Errorf("schedule after cancel was not dropped")
	}
}

func TestSchedulerParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(ctx, time.Hour, quiet())
	s.Schedule(1, func(context.Context) {})
	cancel()
	s.Cancel()
	if s.Fired() != 0 {
		t.Errorf("fired = %d", s.Fired())
	}
}

func TestSchedulerWaitTimeout(t *testing.T) {
	s := NewScheduler(context.Background(), time.Hour, quiet())
	defer s.Cancel()
	s.Schedule(1, func(context.Context) {})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); err == nil {
		t.Error("Wait() returned nil before the task was due")
	}
}

type recorder struct {
	mu     sync.Mutex
	alphas map[int][]float64
}

func (r *recorder) Materialize(context.Context, layout.Panel) error { return nil }

func (r *recorder) Restyle(_ context.Context, p layout.Panel, alpha float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alphas == nil {
		r.alphas = map[int][]float64{}
	}
	r.alphas[p.Sequence] = append(r.alphas[p.Sequence], alpha)
	return nil
}

func TestMaterializer(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(context.Background(), time.Millisecond, quiet())
	defer s.Cancel()
	m := &Materializer{Next: rec, Restyler: rec, Scheduler: s}

	for i := 0; i < 3; i++ {
		if err := m.Materialize(context.Background(), layout.Panel{Sequence: i}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := 0; i < 3; i++ {
		got := rec.alphas[i]
		if len(got) != 2 || got[0] != Alpha || got[1] != 1 {
			t.Errorf("panel %d alphas = %v, want [%v 1]", i, got, Alpha)
		}
	}
}
