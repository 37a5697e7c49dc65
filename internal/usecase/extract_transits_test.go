package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/troyzx/cmat/internal/domain"
)

func TestExtractTransitsRecoversEpochs(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 6, 0.001, nil, 7)

	transits, skipped, err := NewExtractTransits().Execute(context.Background(), target, curve)
	if err != nil {
		t.Fatalf("expected success, got %v (skipped: %v)", err, skipped)
	}

	if len(transits) != 6 {
		t.Fatalf("expected 6 transits, got %d (skipped %d)", len(transits), len(skipped))
	}

	for i, tt := range transits {
		if tt.Epoch != i {
			t.Fatalf("expected epoch %d at position %d, got %d", i, i, tt.Epoch)
		}
		predicted := target.Ephemeris.PredictedCenter(tt.Epoch).N
		if math.Abs(tt.Center.N-predicted) > 0.003 {
			t.Fatalf("epoch %d center off by %g days", tt.Epoch, tt.Center.N-predicted)
		}
		if tt.Center.S <= 0 {
			t.Fatalf("epoch %d missing timing uncertainty", tt.Epoch)
		}
	}
}

func TestExtractTransitsRecoversShiftedTransit(t *testing.T) {
	target := testTarget()
	const shiftSec = 300.0
	shift := func(epoch int) float64 {
		if epoch == 3 {
			return shiftSec
		}
		return 0
	}
	curve := syntheticCurve(target, 6, 0.0005, shift, 11)

	transits, _, err := NewExtractTransits().Execute(context.Background(), target, curve)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	for _, tt := range transits {
		if tt.Epoch != 3 {
			continue
		}
		predicted := target.Ephemeris.PredictedCenter(3).N
		gotShiftSec := (tt.Center.N - predicted) * domain.DayToSec
		if math.Abs(gotShiftSec-shiftSec) > 60 {
			t.Fatalf("expected ~%gs shift at epoch 3, measured %gs", shiftSec, gotShiftSec)
		}
		return
	}
	t.Fatal("epoch 3 missing from results")
}

func TestExtractTransitsSkipsGaps(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 6, 0.001, nil, 3)

	// Remove all samples around epoch 2: a data gap, not a failure.
	center := target.Ephemeris.PredictedCenter(2).N
	kept := curve.Samples[:0]
	for _, s := range curve.Samples {
		if math.Abs(s.TimeBJD-center) < 0.5 {
			continue
		}
		kept = append(kept, s)
	}
	curve.Samples = kept

	transits, skipped, err := NewExtractTransits().Execute(context.Background(), target, curve)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(transits) != 5 {
		t.Fatalf("expected 5 transits, got %d", len(transits))
	}
	for _, tt := range transits {
		if tt.Epoch == 2 {
			t.Fatal("epoch 2 should be absent")
		}
	}
	if len(skipped) != 0 {
		t.Fatalf("empty windows must not be reported as skipped, got %v", skipped)
	}
}

func TestExtractTransitsAllFlatFails(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 4, 0.001, nil, 5)
	for i := range curve.Samples {
		curve.Samples[i].Flux = 1 // erase every transit
	}

	_, skipped, err := NewExtractTransits().Execute(context.Background(), target, curve)
	if !domain.IsKind(err, domain.KindBadData) {
		t.Fatalf("expected KindBadData, got %v", err)
	}
	if len(skipped) == 0 {
		t.Fatal("expected skipped epochs to be reported")
	}
}

func TestExtractTransitsContextCancelled(t *testing.T) {
	target := testTarget()
	curve := syntheticCurve(target, 3, 0.001, nil, 9)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewExtractTransits().Execute(ctx, target, curve)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractTransitsRejectsInvalidCurve(t *testing.T) {
	target := testTarget()
	_, _, err := NewExtractTransits().Execute(context.Background(), target, domain.LightCurve{})
	if !domain.IsKind(err, domain.KindBadData) {
		t.Fatalf("expected KindBadData for empty curve, got %v", err)
	}
}
