package usecase

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/troyzx/cmat/internal/domain"
)

// pathCurveLoader serves a distinct curve per file, keyed by base name.
type pathCurveLoader struct {
	curves map[string]domain.LightCurve
}

func (f pathCurveLoader) LoadCurve(path string) (domain.LightCurve, error) {
	curve, ok := f.curves[filepath.Base(path)]
	if !ok {
		return domain.LightCurve{}, domain.ErrNotFound
	}
	return curve, nil
}

func flatCurve(from, to, step, flux float64) domain.LightCurve {
	var lc domain.LightCurve
	for t := from; t < to; t += step {
		lc.Samples = append(lc.Samples, domain.Sample{TimeBJD: t, Flux: flux, FluxErr: flux / 1000})
	}
	return lc
}

func TestLoadTargetCurveNormalizesEachFile(t *testing.T) {
	// Two sectors of the same target with very different raw flux
	// scales. Each must come out with its own baseline at 1, not a
	// joint baseline skewed by the brighter file.
	target := testTarget()
	target.Data = []domain.DataRef{
		{Path: "data/sector1.csv", Format: domain.FormatCSV},
		{Path: "data/sector2.csv", Format: domain.FormatCSV},
	}
	loaders := CurveLoaders{CSV: pathCurveLoader{curves: map[string]domain.LightCurve{
		"sector1.csv": flatCurve(1000, 1010, 0.01, 1000),
		"sector2.csv": flatCurve(1020, 1030, 0.01, 2000),
	}}}

	merged, err := LoadTargetCurve(context.Background(), t.TempDir(), target, loaders)
	if err != nil {
		t.Fatalf("LoadTargetCurve: %v", err)
	}

	for _, seg := range []struct {
		name     string
		from, to float64
	}{
		{"sector1", 1000, 1010},
		{"sector2", 1020, 1030},
	} {
		samples := merged.Window(seg.from, seg.to)
		if len(samples) == 0 {
			t.Fatalf("%s: no samples in merged curve", seg.name)
		}
		var mean float64
		for _, s := range samples {
			mean += s.Flux
		}
		mean /= float64(len(samples))
		if math.Abs(mean-1.0) > 1e-9 {
			t.Fatalf("%s: baseline = %g, want 1", seg.name, mean)
		}
	}
}

func TestLoadTargetCurveOverlappingFiles(t *testing.T) {
	// Files sharing timestamps must still merge into a valid curve.
	target := testTarget()
	target.Data = []domain.DataRef{
		{Path: "data/a.csv", Format: domain.FormatCSV},
		{Path: "data/b.csv", Format: domain.FormatCSV},
	}
	loaders := CurveLoaders{CSV: pathCurveLoader{curves: map[string]domain.LightCurve{
		"a.csv": flatCurve(1000, 1005, 1, 1000),
		"b.csv": flatCurve(1004, 1009, 1, 1500),
	}}}

	merged, err := LoadTargetCurve(context.Background(), t.TempDir(), target, loaders)
	if err != nil {
		t.Fatalf("LoadTargetCurve: %v", err)
	}
	if merged.Len() != 9 {
		t.Fatalf("len = %d, want 9 after collapsing the shared timestamp", merged.Len())
	}
	for i := 1; i < merged.Len(); i++ {
		if merged.Samples[i].TimeBJD <= merged.Samples[i-1].TimeBJD {
			t.Fatalf("non-increasing time at sample %d", i)
		}
	}
}

func TestLoadTargetCurveNoDataFiles(t *testing.T) {
	target := testTarget()
	target.Data = nil

	_, err := LoadTargetCurve(context.Background(), t.TempDir(), target, CurveLoaders{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("kind = %v, want invalid_config", err)
	}
}

func TestLoadTargetCurveMissingLoader(t *testing.T) {
	target := testTarget()
	target.Data = []domain.DataRef{{Path: "data/test.fits", Format: domain.FormatFITS}}

	_, err := LoadTargetCurve(context.Background(), t.TempDir(), target, CurveLoaders{CSV: fakeCurveLoader{}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("kind = %v, want invalid_config", err)
	}
}
