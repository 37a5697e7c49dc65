package domain

import "sort"

// TransitTime is an inferred mid-transit time for one cycle.
type TransitTime struct {
	Epoch        int     `json:"epoch"`
	Center       Value   `json:"center_bjd"`
	Depth        float64 `json:"depth"`
	DurationDays float64 `json:"duration_days"`
	ChiSquare    float64 `json:"chi_square"`
	Points       int     `json:"points"`
}

// SortTransitTimes orders transit times by epoch in place.
func SortTransitTimes(ts []TransitTime) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Epoch < ts[j].Epoch })
}

// TTVPoint is one observed-minus-calculated timing residual.
type TTVPoint struct {
	Epoch      int     `json:"epoch"`
	Seconds    float64 `json:"ttv_s"`
	ErrSeconds float64 `json:"err_s"`
}

// TTVSeries is the timing-residual series relative to a refitted linear
// ephemeris, mean-subtracted, in seconds.
type TTVSeries struct {
	Points           []TTVPoint `json:"points"`
	RMSSeconds       float64    `json:"rms_s"`
	AmplitudeSeconds float64    `json:"amplitude_s"`
	Refined          Ephemeris  `json:"refined_ephemeris"`
}

// MaxAbsResidual returns the largest |O-C| in seconds.
func (s TTVSeries) MaxAbsResidual() float64 {
	max := 0.0
	for _, p := range s.Points {
		v := p.Seconds
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// MedianErrSeconds returns the median per-point timing error.
func (s TTVSeries) MedianErrSeconds() float64 {
	n := len(s.Points)
	if n == 0 {
		return 0
	}
	errs := make([]float64, n)
	for i, p := range s.Points {
		errs[i] = p.ErrSeconds
	}
	sort.Float64s(errs)
	if n%2 == 1 {
		return errs[n/2]
	}
	return 0.5 * (errs[n/2-1] + errs[n/2])
}
