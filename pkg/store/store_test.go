package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

func wall(id string) region.Region {
	return region.Region{
		ID:       id,
		Boundary: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1000, Z: 0}, {X: 0, Y: 1000, Z: 1000}, {X: 0, Y: 0, Z: 1000}},
		Normal:   geom.AxisX,
	}
}

func TestMemoryStoreCommittedByRun(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	res, err := layout.Run(ctx, []region.Region{wall("north")}, layout.DefaultConfig(units.Millimeter), layout.WithCommitter(s))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stored layout mismatch (-want +got):\n%s", diff)
	}

	sums, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].RunID != res.RunID || sums[0].Created != res.Created {
		t.Fatalf("List() = %+v", sums)
	}
	if diff := cmp.Diff([]string{"north"}, sums[0].Regions); diff != "" {
		t.Errorf("regions (-want +got):\n%s", diff)
	}
}

func TestMemoryStorePreviewNotCommitted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	res, err := layout.Run(ctx, []region.Region{wall("north")}, layout.DefaultConfig(units.Millimeter),
		layout.WithCommitter(s), layout.AsPreview())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, res.RunID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(preview) = %v, want NOT_FOUND", err)
	}
	if err := s.Commit(ctx, res); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Commit(preview) = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		res := &layout.Result{RunID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Commit(ctx, res); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"c", "b", "a"}},
		{2, []string{"c", "b"}},
		{10, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		sums, err := s.List(ctx, tt.limit)
		if err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, sum := range sums {
			ids = append(ids, sum.RunID)
		}
		if diff := cmp.Diff(tt.want, ids); diff != "" {
			t.Errorf("List(%d) (-want +got):\n%s", tt.limit, diff)
		}
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
	if sums, _ := s.List(ctx, 0); len(sums) != 2 {
		t.Errorf("after delete List() = %d entries", len(sums))
	}
}

func TestCommitValidation(t *testing.T) {
	s := NewMemoryStore()
	tests := []struct {
		name string
		res  *layout.Result
	}{
		{"nil", nil},
		{"no id", &layout.Result{}},
		{"traversal", &layout.Result{RunID: "../etc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Commit(context.Background(), tt.res); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Commit() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDocumentKeepsFullSeed(t *testing.T) {
	res := &layout.Result{RunID: "run", Seed: math.MaxUint64, CreatedAt: time.Unix(0, 0).UTC()}
	doc, err := toDocument(res)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Seed != "18446744073709551615" {
		t.Errorf("seed = %s", doc.Seed)
	}
	got, err := doc.result()
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != math.MaxUint64 || got.RunID != "run" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestNewMongoStoreErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := NewMongoStore(ctx, MongoConfig{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty uri = %v", err)
	}
	_, err := NewMongoStore(ctx, MongoConfig{
		URI:     "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		Timeout: time.Second,
	})
	if err == nil {
		t.Error("connected to a closed port")
	}
}
