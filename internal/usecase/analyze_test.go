package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/troyzx/cmat/internal/domain"
)

func TestAnalyzePipelineEndToEnd(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 6, 0.001, nil, 21)

	store := &fakeStore{saveID: "run-001"}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	uc := NewAnalyze(
		fakeTargetLoader{target: target},
		CurveLoaders{CSV: fakeCurveLoader{curve: curve}},
		store,
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "deadbeef" }),
	)

	run, id, err := uc.Execute(context.Background(), "/ws", "targets/test-1-b.yaml")
	if err != nil {
		t.Fatalf("expected pipeline success, got %v", err)
	}

	if id != "run-001" {
		t.Fatalf("expected stored run id, got %q", id)
	}
	if run.ID != "deadbeef" {
		t.Fatalf("expected generated run id, got %q", run.ID)
	}
	if run.TargetName != target.Name {
		t.Fatalf("expected target name %q, got %q", target.Name, run.TargetName)
	}
	if !run.StartedAt.Equal(fixed) || !run.EndedAt.Equal(fixed) {
		t.Fatal("expected injected clock to stamp the run")
	}
	if len(run.Transits) != 6 {
		t.Fatalf("expected 6 transits, got %d", len(run.Transits))
	}
	if len(run.TTV.Points) != 6 {
		t.Fatalf("expected 6 TTV points, got %d", len(run.TTV.Points))
	}
	if len(run.Constraints.Constraints) == 0 {
		t.Fatal("expected a constraint grid")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one stored run, got %d", len(store.saved))
	}
}

func TestAnalyzeNoStore(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 5, 0.001, nil, 22)

	uc := NewAnalyze(
		fakeTargetLoader{target: target},
		CurveLoaders{CSV: fakeCurveLoader{curve: curve}},
		nil,
	)

	_, id, err := uc.Execute(context.Background(), "/ws", "targets/test-1-b.yaml")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty run id without a store, got %q", id)
	}
}

func TestAnalyzeTargetLoadError(t *testing.T) {
	loadErr := errors.New("target missing")
	uc := NewAnalyze(fakeTargetLoader{err: loadErr}, CurveLoaders{}, nil)

	_, _, err := uc.Execute(context.Background(), "/ws", "targets/nope.yaml")
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}

func TestAnalyzeStoreError(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 5, 0.001, nil, 23)
	storeErr := errors.New("disk full")

	uc := NewAnalyze(
		fakeTargetLoader{target: target},
		CurveLoaders{CSV: fakeCurveLoader{curve: curve}},
		&fakeStore{err: storeErr},
	)

	run, _, err := uc.Execute(context.Background(), "/ws", "targets/test-1-b.yaml")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	// The computed run is still returned so the caller can print it.
	if len(run.Transits) == 0 {
		t.Fatal("expected computed transits despite store failure")
	}
}

func TestAnalyzeLoadTargetCurveMissingLoader(t *testing.T) {
	target := testTarget()
	target.Data = []domain.DataRef{{Path: "x.fits", Format: domain.FormatFITS}}

	_, err := LoadTargetCurve(context.Background(), "/ws", target, CurveLoaders{})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}

func TestLoadTargetCurveNoData(t *testing.T) {
	target := testTarget()
	target.Data = nil

	_, err := LoadTargetCurve(context.Background(), "/ws", target, CurveLoaders{})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}
