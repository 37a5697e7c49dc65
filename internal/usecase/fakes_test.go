package usecase

import (
	"context"
	"math"
	"math/rand"

	"github.com/troyzx/cmat/internal/domain"
)

type fakeTargetLoader struct {
	target domain.Target
	err    error
}

func (f fakeTargetLoader) LoadTarget(string) (domain.Target, error) {
	return f.target, f.err
}

func (f fakeTargetLoader) ListTargets(string) ([]domain.TargetRef, error) {
	return []domain.TargetRef{{Name: f.target.Name}}, f.err
}

type fakeCurveLoader struct {
	curve domain.LightCurve
	err   error
}

func (f fakeCurveLoader) LoadCurve(string) (domain.LightCurve, error) {
	return f.curve, f.err
}

type fakeStore struct {
	saved  []domain.AnalysisRun
	saveID string
	err    error
}

func (f *fakeStore) SaveRun(run domain.AnalysisRun) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, run)
	return f.saveID, nil
}

func (f *fakeStore) LoadRun(string) (domain.AnalysisRun, error) {
	if len(f.saved) == 0 {
		return domain.AnalysisRun{}, domain.ErrNotFound
	}
	return f.saved[len(f.saved)-1], nil
}

func (f *fakeStore) ListRuns() ([]domain.AnalysisRun, error) {
	return f.saved, nil
}

type fakeArchive struct {
	target domain.Target
	tic    int64
	err    error
}

func (f fakeArchive) ResolveTIC(context.Context, string) (int64, error) {
	return f.tic, f.err
}

func (f fakeArchive) Properties(context.Context, string) (domain.Target, error) {
	return f.target, f.err
}

type fakeTargetWriter struct {
	path  string
	err   error
	saved []domain.Target
}

func (f *fakeTargetWriter) SaveTarget(_ string, target domain.Target, _ bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, target)
	return f.path, f.err
}

// testTarget is the synthetic system shared by the pipeline tests.
func testTarget() domain.Target {
	return domain.Target{
		Name: "TEST-1 b",
		TIC:  12345,
		Star: domain.Star{MassMsun: domain.V(1.0, 0.05)},
		Ephemeris: domain.Ephemeris{
			Period:    domain.V(2.5, 1e-5),
			ZeroEpoch: domain.V(1000.0, 1e-3),
		},
		Transit: domain.TransitShape{Depth: 0.01, DurationDays: 0.12},
		Data:    []domain.DataRef{{Path: "data/test.csv", Format: domain.FormatCSV}},
	}
}

// syntheticCurve samples transits of the test target at a fixed cadence,
// shifting each transit center by shiftSec(epoch).
func syntheticCurve(target domain.Target, epochs int, noise float64, shiftSec func(epoch int) float64, seed int64) domain.LightCurve {
	rng := rand.New(rand.NewSource(seed))
	eph := target.Ephemeris
	dur := target.Transit.DurationDays

	curve := domain.LightCurve{Target: target.Name, Source: "synthetic"}
	for e := 0; e < epochs; e++ {
		center := eph.PredictedCenter(e).N
		if shiftSec != nil {
			center += shiftSec(e) / domain.DayToSec
		}
		for t := center - 1.4*dur; t <= center+1.4*dur; t += dur / 60 {
			flux := 1 - target.Transit.Depth*trapezoid(math.Abs(t-center), dur)
			if noise > 0 {
				flux += rng.NormFloat64() * noise
			}
			curve.Samples = append(curve.Samples, domain.Sample{
				TimeBJD: t,
				Flux:    flux,
				FluxErr: noise,
			})
		}
	}
	return curve
}

func trapezoid(u, duration float64) float64 {
	h := duration / 2
	g := 0.3 * h
	switch {
	case u >= h:
		return 0
	case u <= h-g:
		return 1
	default:
		return (h - u) / g
	}
}
