package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/troyzx/cmat/internal/domain"
)

func testTTV(amplitudeSec, errSec float64) domain.TTVSeries {
	return domain.TTVSeries{
		Points: []domain.TTVPoint{
			{Epoch: 0, Seconds: -amplitudeSec / 2, ErrSeconds: errSec},
			{Epoch: 1, Seconds: amplitudeSec, ErrSeconds: errSec},
			{Epoch: 2, Seconds: -amplitudeSec / 2, ErrSeconds: errSec},
		},
		AmplitudeSeconds: amplitudeSec,
		RMSSeconds:       amplitudeSec / math.Sqrt2,
	}
}

func TestConstrainMassGridShape(t *testing.T) {
	uc := NewConstrainMass(WithGrid(domain.GridSpec{
		MinPeriodRatio: 0.5,
		MaxPeriodRatio: 4,
		Steps:          12,
	}))

	grid, err := uc.Execute(context.Background(), testTarget(), testTTV(60, 10))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(grid.Constraints) != 12 {
		t.Fatalf("expected 12 grid points, got %d", len(grid.Constraints))
	}

	period := testTarget().Ephemeris.Period.N
	if math.Abs(grid.Constraints[0].PerturberPeriodDays-0.5*period) > 1e-9 {
		t.Fatalf("first grid point at %g, want %g", grid.Constraints[0].PerturberPeriodDays, 0.5*period)
	}
	if math.Abs(grid.Constraints[11].PerturberPeriodDays-4*period) > 1e-9 {
		t.Fatalf("last grid point at %g, want %g", grid.Constraints[11].PerturberPeriodDays, 4*period)
	}

	for i, c := range grid.Constraints {
		if i > 0 && c.PerturberPeriodDays <= grid.Constraints[i-1].PerturberPeriodDays {
			t.Fatal("grid must be ordered by perturber period")
		}
		if c.UpperBoundMJup <= 0 || math.IsInf(c.UpperBoundMJup, 0) || math.IsNaN(c.UpperBoundMJup) {
			t.Fatalf("bound at point %d not positive finite: %g", i, c.UpperBoundMJup)
		}
		wantEarth := c.UpperBoundMJup * domain.MJupToMSun / domain.MEarthToMSun
		if math.Abs(c.UpperBoundMEarth-wantEarth) > 1e-9*wantEarth {
			t.Fatalf("earth-mass bound inconsistent at point %d", i)
		}
	}
}

func TestConstrainMassMonotoneInAmplitude(t *testing.T) {
	uc := NewConstrainMass()
	target := testTarget()

	small, err := uc.Execute(context.Background(), target, testTTV(30, 1))
	if err != nil {
		t.Fatalf("small amplitude: %v", err)
	}
	large, err := uc.Execute(context.Background(), target, testTTV(300, 1))
	if err != nil {
		t.Fatalf("large amplitude: %v", err)
	}

	for i := range small.Constraints {
		if large.Constraints[i].UpperBoundMJup <= small.Constraints[i].UpperBoundMJup {
			t.Fatalf("bound must grow with amplitude at point %d", i)
		}
	}
}

func TestConstrainMassNonDetectionUsesErrorFloor(t *testing.T) {
	uc := NewConstrainMass(WithConfidence(0.95))

	// Amplitude well below the noise: the limit comes from the errors.
	ttv := testTTV(1, 50)
	grid, err := uc.Execute(context.Background(), testTarget(), ttv)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	limit := grid.Constraints[0].AmplitudeLimitSeconds
	wantZ := math.Sqrt2 * math.Erfinv(0.95)
	want := wantZ * 50
	if math.Abs(limit-want) > 0.1 {
		t.Fatalf("expected error-floor limit ~%g s, got %g s", want, limit)
	}
}

func TestConstrainMassDetectionUsesAmplitude(t *testing.T) {
	uc := NewConstrainMass(WithConfidence(0.95))

	grid, err := uc.Execute(context.Background(), testTarget(), testTTV(500, 10))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := grid.Constraints[0].AmplitudeLimitSeconds; got != 500 {
		t.Fatalf("expected measured amplitude to set the limit, got %g s", got)
	}
}

func TestConstrainMassBest(t *testing.T) {
	uc := NewConstrainMass()
	grid, err := uc.Execute(context.Background(), testTarget(), testTTV(60, 10))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	best, ok := grid.Best()
	if !ok {
		t.Fatal("expected a best constraint")
	}
	for _, c := range grid.Constraints {
		if c.UpperBoundMJup < best.UpperBoundMJup {
			t.Fatal("Best did not return the tightest bound")
		}
	}
}

func TestConstrainMassRejectsEmptySeries(t *testing.T) {
	uc := NewConstrainMass()
	_, err := uc.Execute(context.Background(), testTarget(), domain.TTVSeries{})
	if !domain.IsKind(err, domain.KindBadData) {
		t.Fatalf("expected KindBadData, got %v", err)
	}
}

func TestConstrainMassRejectsBadGrid(t *testing.T) {
	uc := NewConstrainMass(WithGrid(domain.GridSpec{MinPeriodRatio: 2, MaxPeriodRatio: 1, Steps: 10}))
	_, err := uc.Execute(context.Background(), testTarget(), testTTV(60, 10))
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}
