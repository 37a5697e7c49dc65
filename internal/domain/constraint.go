package domain

// MassConstraint is an upper bound on an unseen companion's mass at one
// perturber-period grid point.
type MassConstraint struct {
	PerturberPeriodDays    float64 `json:"perturber_period_days"`
	UpperBoundMJup         float64 `json:"upper_bound_mjup"`
	UpperBoundMEarth       float64 `json:"upper_bound_mearth"`
	AmplitudeLimitSeconds  float64 `json:"amplitude_limit_s"`
	ExpectedSecondsPerMJup float64 `json:"expected_s_per_mjup"`
	Confidence             float64 `json:"confidence"`
}

// ConstraintGrid is a set of constraints ordered by perturber period.
type ConstraintGrid struct {
	Constraints []MassConstraint `json:"constraints"`
}

// Best returns the tightest (smallest) upper bound in the grid.
func (g ConstraintGrid) Best() (MassConstraint, bool) {
	if len(g.Constraints) == 0 {
		return MassConstraint{}, false
	}
	best := g.Constraints[0]
	for _, c := range g.Constraints[1:] {
		if c.UpperBoundMJup < best.UpperBoundMJup {
			best = c
		}
	}
	return best, true
}

// GridSpec describes the perturber-period grid used for mass constraints,
// as multiples of the transiting planet's period.
type GridSpec struct {
	MinPeriodRatio float64 `json:"min_period_ratio"`
	MaxPeriodRatio float64 `json:"max_period_ratio"`
	Steps          int     `json:"steps"`
}

// DefaultGridSpec spans interior to wide exterior perturbers.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		MinPeriodRatio: 0.3,
		MaxPeriodRatio: 10,
		Steps:          40,
	}
}
