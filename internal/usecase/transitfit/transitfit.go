// Package transitfit fits a single transit window for its mid-time.
//
// The model is a symmetric trapezoid dip on a flat baseline. Depth enters the
// model linearly, so for any candidate center it is solved in closed form;
// the center itself is found by a coarse grid scan refined with a parabolic
// step, and its uncertainty comes from the chi-square curvature.
package transitfit

import (
	"fmt"
	"math"
	"sort"

	"github.com/troyzx/cmat/internal/domain"
)

// Config controls the single-transit fit.
type Config struct {
	// IngressFraction is the ingress (and egress) duration as a fraction
	// of the transit half-duration.
	IngressFraction float64

	// SearchDurations is the half-width of the center search window in
	// multiples of the transit duration.
	SearchDurations float64

	// GridSteps is the number of candidate centers in the coarse scan.
	GridSteps int

	// MinPoints is the minimum number of samples required to fit.
	MinPoints int

	// MinDepthSigma rejects fits whose depth is not significant at this
	// many sigma (flat segments).
	MinDepthSigma float64
}

// DefaultConfig returns the fit defaults.
func DefaultConfig() Config {
	return Config{
		IngressFraction: 0.3,
		SearchDurations: 0.5,
		GridSteps:       200,
		MinPoints:       20,
		MinDepthSigma:   5,
	}
}

// Guess seeds the fit with the ephemeris prediction and prior geometry.
type Guess struct {
	Epoch        int
	CenterBJD    float64
	DurationDays float64
	Depth        float64
}

// Fit estimates the mid-transit time for one windowed segment.
func Fit(samples []domain.Sample, guess Guess, cfg Config) (domain.TransitTime, error) {
	if cfg.GridSteps < 3 {
		cfg.GridSteps = 3
	}
	if len(samples) < cfg.MinPoints {
		return domain.TransitTime{}, &domain.OpError{
			Op:   "transitfit.fit",
			Kind: domain.KindBadData,
			Err: fmt.Errorf("%w: epoch %d: %d samples, need %d",
				domain.ErrBadData, guess.Epoch, len(samples), cfg.MinPoints),
		}
	}
	if guess.DurationDays <= 0 {
		return domain.TransitTime{}, &domain.OpError{
			Op:   "transitfit.fit",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: non-positive transit duration", domain.ErrInvalidConfig),
		}
	}

	weights, calibrated := buildWeights(samples)

	search := cfg.SearchDurations * guess.DurationDays
	if search <= 0 {
		search = 0.5 * guess.DurationDays
	}
	step := 2 * search / float64(cfg.GridSteps-1)

	bestTC := guess.CenterBJD
	bestChi2 := math.Inf(1)
	bestDepth := 0.0

	for i := 0; i < cfg.GridSteps; i++ {
		tc := guess.CenterBJD - search + float64(i)*step
		depth, chi2 := solveDepth(samples, weights, tc, guess.DurationDays, cfg.IngressFraction)
		if chi2 < bestChi2 {
			bestChi2 = chi2
			bestTC = tc
			bestDepth = depth
		}
	}

	// Parabolic refinement around the grid minimum.
	tc, chi2 := refine(samples, weights, bestTC, step, guess.DurationDays, cfg.IngressFraction, bestChi2)
	depth, _ := solveDepth(samples, weights, tc, guess.DurationDays, cfg.IngressFraction)
	if depth > 0 {
		bestTC, bestChi2, bestDepth = tc, chi2, depth
	}

	depthSigma := depthUncertainty(samples, weights, bestTC, guess.DurationDays, cfg.IngressFraction)
	if bestDepth <= 0 || (calibrated && depthSigma > 0 && bestDepth < cfg.MinDepthSigma*depthSigma) {
		return domain.TransitTime{}, &domain.OpError{
			Op:   "transitfit.fit",
			Kind: domain.KindBadData,
			Err: fmt.Errorf("%w: epoch %d: no significant transit (depth %.2g ± %.2g)",
				domain.ErrBadData, guess.Epoch, bestDepth, depthSigma),
		}
	}

	sigmaTC := centerUncertainty(samples, weights, bestTC, step, guess.DurationDays, cfg.IngressFraction, bestChi2)
	if sigmaTC <= 0 || !finite(sigmaTC) {
		return domain.TransitTime{}, &domain.OpError{
			Op:   "transitfit.fit",
			Kind: domain.KindNumeric,
			Err:  fmt.Errorf("%w: epoch %d: chi-square curvature not usable", domain.ErrNumeric, guess.Epoch),
		}
	}

	// Inflate the timing error when the fit is formally poor, so scatter
	// not captured by the flux errors still propagates into the TTV.
	if dof := float64(len(samples) - 2); dof > 0 {
		if red := bestChi2 / dof; red > 1 {
			sigmaTC *= math.Sqrt(red)
		}
	}

	return domain.TransitTime{
		Epoch:        guess.Epoch,
		Center:       domain.V(bestTC, sigmaTC),
		Depth:        bestDepth,
		DurationDays: guess.DurationDays,
		ChiSquare:    bestChi2,
		Points:       len(samples),
	}, nil
}

// shape returns the trapezoid dip profile in [0,1] at offset u=|t-tc|.
func shape(u, duration, ingressFrac float64) float64 {
	h := duration / 2
	g := ingressFrac * h
	switch {
	case u >= h:
		return 0
	case g <= 0 || u <= h-g:
		return 1
	default:
		return (h - u) / g
	}
}

// solveDepth finds the weighted least-squares depth for a fixed center and
// returns it with the resulting chi-square. The model flux is 1 - depth*s(t).
func solveDepth(samples []domain.Sample, weights []float64, tc, duration, ingressFrac float64) (depth, chi2 float64) {
	var sumWS2, sumWSD float64
	for i, s := range samples {
		sh := shape(math.Abs(s.TimeBJD-tc), duration, ingressFrac)
		if sh == 0 {
			continue
		}
		sumWS2 += weights[i] * sh * sh
		sumWSD += weights[i] * sh * (1 - s.Flux)
	}
	if sumWS2 > 0 {
		depth = sumWSD / sumWS2
	}

	for i, s := range samples {
		sh := shape(math.Abs(s.TimeBJD-tc), duration, ingressFrac)
		r := s.Flux - (1 - depth*sh)
		chi2 += weights[i] * r * r
	}
	return depth, chi2
}

func depthUncertainty(samples []domain.Sample, weights []float64, tc, duration, ingressFrac float64) float64 {
	var sumWS2 float64
	for i, s := range samples {
		sh := shape(math.Abs(s.TimeBJD-tc), duration, ingressFrac)
		sumWS2 += weights[i] * sh * sh
	}
	if sumWS2 <= 0 {
		return 0
	}
	return 1 / math.Sqrt(sumWS2)
}

// refine does one parabolic interpolation step through the three chi-square
// values around the grid minimum.
func refine(samples []domain.Sample, weights []float64, tc0, step, duration, ingressFrac, chi0 float64) (float64, float64) {
	_, chiL := solveDepth(samples, weights, tc0-step, duration, ingressFrac)
	_, chiR := solveDepth(samples, weights, tc0+step, duration, ingressFrac)

	denom := chiL - 2*chi0 + chiR
	if denom <= 0 {
		return tc0, chi0
	}
	offset := 0.5 * step * (chiL - chiR) / denom
	if math.Abs(offset) > step {
		return tc0, chi0
	}

	tc := tc0 + offset
	_, chi := solveDepth(samples, weights, tc, duration, ingressFrac)
	if chi > chi0 {
		return tc0, chi0
	}
	return tc, chi
}

// centerUncertainty estimates sigma(tc) from the chi-square curvature:
// delta-chi-square of 1 marks the 68% interval for one parameter.
func centerUncertainty(samples []domain.Sample, weights []float64, tc, step, duration, ingressFrac, chiMin float64) float64 {
	_, chiL := solveDepth(samples, weights, tc-step, duration, ingressFrac)
	_, chiR := solveDepth(samples, weights, tc+step, duration, ingressFrac)

	curv := (chiL - 2*chiMin + chiR) / (step * step)
	if curv <= 0 {
		return 0
	}
	return math.Sqrt(2 / curv)
}

// buildWeights returns inverse-variance weights. calibrated is false when no
// noise information was available at all, in which case the weights are unit
// and the depth-significance test cannot be applied.
func buildWeights(samples []domain.Sample) (weights []float64, calibrated bool) {
	weights = make([]float64, len(samples))

	// Fallback scatter for samples without flux errors, estimated from
	// point-to-point differences (insensitive to the transit itself).
	scatter := successiveScatter(samples)

	for i, s := range samples {
		sigma := s.FluxErr
		if sigma <= 0 {
			sigma = scatter
		}
		if sigma <= 0 {
			weights[i] = 1
			continue
		}
		calibrated = true
		weights[i] = 1 / (sigma * sigma)
	}
	return weights, calibrated
}

// successiveScatter estimates the per-point flux noise as the median
// absolute successive difference scaled to a Gaussian sigma.
func successiveScatter(samples []domain.Sample) float64 {
	if len(samples) < 3 {
		return 0
	}
	diffs := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		diffs = append(diffs, math.Abs(samples[i].Flux-samples[i-1].Flux))
	}
	med := median(diffs)
	return 1.4826 * med / math.Sqrt2
}

func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
