package domain

import (
	"fmt"
	"math"
	"sort"
)

// Sample is a single photometric measurement.
type Sample struct {
	TimeBJD float64 `json:"time_bjd"`
	Flux    float64 `json:"flux"`
	FluxErr float64 `json:"flux_err"`
}

// LightCurve is a time-ordered series of photometric samples for one target.
type LightCurve struct {
	Target  string   `json:"target"`
	Source  string   `json:"source"` // e.g. file the curve came from
	Samples []Sample `json:"samples"`
}

// Len reports the number of samples.
func (lc LightCurve) Len() int { return len(lc.Samples) }

// SortByTime orders samples by time in place.
func (lc *LightCurve) SortByTime() {
	sort.Slice(lc.Samples, func(i, j int) bool {
		return lc.Samples[i].TimeBJD < lc.Samples[j].TimeBJD
	})
}

// DropInvalid removes samples with non-finite time or flux.
func (lc *LightCurve) DropInvalid() {
	out := lc.Samples[:0]
	for _, s := range lc.Samples {
		if !isFinite(s.TimeBJD) || !isFinite(s.Flux) {
			continue
		}
		if s.FluxErr < 0 || !isFinite(s.FluxErr) {
			s.FluxErr = 0
		}
		out = append(out, s)
	}
	lc.Samples = out
}

// Validate checks the ordering invariant: strictly increasing times.
func (lc LightCurve) Validate() error {
	if len(lc.Samples) == 0 {
		return &OpError{
			Op:   "lightcurve.validate",
			Kind: KindBadData,
			Err:  fmt.Errorf("curve %q: %w: no samples", lc.Source, ErrBadData),
		}
	}
	for i := 1; i < len(lc.Samples); i++ {
		if lc.Samples[i].TimeBJD <= lc.Samples[i-1].TimeBJD {
			return &OpError{
				Op:   "lightcurve.validate",
				Kind: KindBadData,
				Err: fmt.Errorf("curve %q: %w: non-increasing time at sample %d",
					lc.Source, ErrBadData, i),
			}
		}
	}
	return nil
}

// NormalizeByMedian divides fluxes (and their errors) by the median flux,
// so the out-of-transit baseline sits near 1.
func (lc *LightCurve) NormalizeByMedian() {
	med := lc.MedianFlux()
	if med == 0 || !isFinite(med) {
		return
	}
	for i := range lc.Samples {
		lc.Samples[i].Flux /= med
		lc.Samples[i].FluxErr /= math.Abs(med)
	}
}

// MedianFlux returns the median flux, 0 for an empty curve.
func (lc LightCurve) MedianFlux() float64 {
	n := len(lc.Samples)
	if n == 0 {
		return 0
	}
	fluxes := make([]float64, n)
	for i, s := range lc.Samples {
		fluxes[i] = s.Flux
	}
	sort.Float64s(fluxes)
	if n%2 == 1 {
		return fluxes[n/2]
	}
	return 0.5 * (fluxes[n/2-1] + fluxes[n/2])
}

// Window returns the samples with t in [from, to).
func (lc LightCurve) Window(from, to float64) []Sample {
	lo := sort.Search(len(lc.Samples), func(i int) bool {
		return lc.Samples[i].TimeBJD >= from
	})
	hi := sort.Search(len(lc.Samples), func(i int) bool {
		return lc.Samples[i].TimeBJD >= to
	})
	return lc.Samples[lo:hi]
}

// Merge appends another curve and restores the ordering invariant.
// Samples sharing an exact timestamp (overlapping file cuts) are averaged
// so the strictly-increasing invariant survives multi-file targets.
func (lc *LightCurve) Merge(other LightCurve) {
	lc.Samples = append(lc.Samples, other.Samples...)
	lc.SortByTime()

	out := lc.Samples[:0]
	for i := 0; i < len(lc.Samples); {
		j := i + 1
		for j < len(lc.Samples) && lc.Samples[j].TimeBJD == lc.Samples[i].TimeBJD {
			j++
		}

		s := lc.Samples[i]
		if j > i+1 {
			var flux, fluxErr float64
			for _, d := range lc.Samples[i:j] {
				flux += d.Flux
				fluxErr += d.FluxErr
			}
			n := float64(j - i)
			s.Flux = flux / n
			s.FluxErr = fluxErr / n
		}
		out = append(out, s)
		i = j
	}
	lc.Samples = out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
