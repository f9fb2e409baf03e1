package preview

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/ghost"
	"github.com/matzehuels/cladding/pkg/materialize"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type scene struct {
	mu       sync.Mutex
	elements map[string]int
	restyled int
	removed  []string
}

func newScene() *scene { return &scene{elements: map[string]int{}} }

func (s *scene) Materialize(_ context.Context, p layout.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[p.RunID]++
	return nil
}

func (s *scene) Restyle(context.Context, layout.Panel, float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restyled++
	return nil
}

func (s *scene) Remove(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, runID)
	s.removed = append(s.removed, runID)
	return nil
}

func (s *scene) runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.elements)
}

func floor() []region.Region {
	return []region.Region{{
		ID:       "floor",
		Boundary: []geom.Vec3{{}, {X: 1000}, {X: 1000, Y: 1000}, {Y: 1000}},
		Normal:   geom.AxisZ,
	}}
}

func newService(store Store, sc *scene) *Service {
	return &Service{Store: store, Materializer: sc, Remover: sc, Logger: log.New(io.Discard)}
}

func TestServiceReplacesPreview(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sc := newScene()
	svc := newService(store, sc)
	cfg := layout.DefaultConfig(units.Millimeter)
	cfg.GhostDelayMillis = 60_000

	first, err := svc.Run(context.Background(), "s1", floor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Result.Preview || first.Schedule() == nil || first.Schedule().Pending() == 0 {
		t.Fatalf("first preview = %+v", first)
	}

	second, err := svc.Run(context.Background(), "s1", floor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if first.Schedule().Dropped() == 0 {
		t.Error("replaced preview kept its ghost schedule")
	}
	if sc.runs() != 1 || len(sc.removed) != 1 || sc.removed[0] != first.Result.RunID {
		t.Errorf("scene runs = %d, removed = %v", sc.runs(), sc.removed)
	}

	got, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID {
		t.Errorf("stored preview = %s, want %s", got.ID, second.ID)
	}
	if store.Len() != 1 {
		t.Errorf("store len = %d", store.Len())
	}
}

// gatedScene holds the first panel it sees until release is closed.
type gatedScene struct {
	*scene
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedScene) Materialize(ctx context.Context, p layout.Panel) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.scene.Materialize(ctx, p)
}

func TestServiceOverlappingRuns(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sc := newScene()
	gate := &gatedScene{scene: sc, entered: make(chan struct{}), release: make(chan struct{})}
	svc := &Service{Store: store, Materializer: gate, Remover: sc, Logger: log.New(io.Discard)}
	cfg := layout.DefaultConfig(units.Millimeter)
	ctx := context.Background()

	var slow *Preview
	var slowErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		slow, slowErr = svc.Run(ctx, "s1", floor(), cfg)
	}()
	<-gate.entered

	fast, err := svc.Run(ctx, "s1", floor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	close(gate.release)
	<-done
	if slowErr != nil {
		t.Fatal(slowErr)
	}

	if sc.runs() != 1 {
		t.Errorf("scene holds elements of %d runs, want 1", sc.runs())
	}
	if len(sc.removed) != 1 || sc.removed[0] != fast.Result.RunID {
		t.Errorf("removed = %v, want [%s]", sc.removed, fast.Result.RunID)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != slow.ID {
		t.Errorf("stored preview = %s, want the last stored %s", got.ID, slow.ID)
	}
}

func TestServiceCleanupRemovesElements(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	col := materialize.NewCollector()
	svc := &Service{Store: store, Materializer: col, Remover: col, TTL: time.Millisecond, Logger: log.New(io.Discard)}
	cfg := layout.DefaultConfig(units.Millimeter)
	ctx := context.Background()

	p, err := svc.Run(ctx, "s1", floor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	runID := p.Result.RunID
	if len(col.Elements(runID)) == 0 {
		t.Fatal("preview created no elements")
	}

	time.Sleep(10 * time.Millisecond)
	if err := svc.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(col.Elements(runID)); n != 0 {
		t.Errorf("collector keeps %d elements of the expired preview", n)
	}
	if len(col.Runs()) != 0 {
		t.Errorf("collector runs = %v, want none", col.Runs())
	}
	if store.Len() != 0 {
		t.Errorf("store len = %d, want 0", store.Len())
	}
}

func TestServiceGhostsElements(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sc := newScene()
	svc := newService(store, sc)
	cfg := layout.DefaultConfig(units.Millimeter)
	cfg.GhostDelayMillis = 1

	p, err := svc.Run(context.Background(), "s1", floor(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Schedule().Wait(ctx); err != nil {
		t.Fatal(err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if want := 2 * p.Result.Created; sc.restyled != want {
		t.Errorf("restyled = %d, want %d (ghost then final)", sc.restyled, want)
	}
}

func TestServiceDiscard(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sc := newScene()
	svc := newService(store, sc)

	if _, err := svc.Run(context.Background(), "s1", floor(), layout.DefaultConfig(units.Millimeter)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Discard(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() after discard = %v, want SESSION_NOT_FOUND", err)
	}
	if sc.runs() != 0 {
		t.Errorf("scene still holds %d runs", sc.runs())
	}
}

func TestServiceFailureKeepsSession(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sc := newScene()
	svc := newService(store, sc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Run(ctx, "s1", floor(), layout.DefaultConfig(units.Millimeter)); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Run() = %v, want CANCELED", err)
	}
	if store.Len() != 0 {
		t.Errorf("store len = %d", store.Len())
	}
}

func TestServiceWithoutRestyler(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	svc := &Service{Store: store, Logger: log.New(io.Discard)}

	p, err := svc.Run(context.Background(), "s1", floor(), layout.DefaultConfig(units.Millimeter))
	if err != nil {
		t.Fatal(err)
	}
	if p.Schedule() != nil {
		t.Error("schedule started without a restyler")
	}
}

func TestStores(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	stores := map[string]Store{"memory": NewMemoryStore(), "file": fs}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			ctx := context.Background()

			if _, err := store.Get(ctx, "s1"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
				t.Fatalf("Get() on empty store = %v", err)
			}

			sched := ghost.NewScheduler(ctx, time.Hour, log.New(io.Discard))
			sched.Schedule(1, func(context.Context) {})
			a := New("s1", &layout.Result{RunID: "run-a"}, time.Minute, sched)
			if old, err := store.Replace(ctx, a); err != nil || old != nil {
				t.Fatalf("Replace() = %v, %v", old, err)
			}

			b := New("s1", &layout.Result{RunID: "run-b"}, time.Minute, nil)
			old, err := store.Replace(ctx, b)
			if err != nil {
				t.Fatal(err)
			}
			if old == nil || old.ID != a.ID {
				t.Fatalf("Replace() returned %+v, want preview %s", old, a.ID)
			}
			if sched.Dropped() != 1 {
				t.Errorf("old schedule not canceled, dropped = %d", sched.Dropped())
			}

			got, err := store.Get(ctx, "s1")
			if err != nil || got.Result.RunID != "run-b" {
				t.Fatalf("Get() = %+v, %v", got, err)
			}

			expired := New("s2", &layout.Result{RunID: "run-c"}, time.Minute, nil)
			expired.ExpiresAt = time.Now().Add(-time.Second)
			if _, err := store.Replace(ctx, expired); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Get(ctx, "s2"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
				t.Errorf("Get() on expired preview = %v", err)
			}
			swept, err := store.Cleanup(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(swept) != 1 || swept[0].Result.RunID != "run-c" {
				t.Errorf("Cleanup() = %+v, want the run-c preview", swept)
			}
			if swept, _ := store.Cleanup(ctx); len(swept) != 0 {
				t.Errorf("second Cleanup() = %+v", swept)
			}

			if _, err := store.Delete(ctx, "s1"); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Delete(ctx, "s1"); err != nil {
				t.Errorf("second Delete() = %v", err)
			}
		})
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Get(context.Background(), "../etc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(../etc) = %v, want INVALID_INPUT", err)
	}
}
