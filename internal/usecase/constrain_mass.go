package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/troyzx/cmat/internal/domain"
)

// ConstrainMass inverts the measured TTV amplitude into an upper bound on an
// unseen companion's mass over a grid of perturber periods.
//
// The expected amplitude per unit companion mass uses the analytic
// non-resonant estimates: barycentric wobble for an interior perturber and
// the leading tidal term for an exterior one. Both underestimate the signal
// near mean-motion resonances, which keeps the derived bound conservative.
type ConstrainMass struct {
	grid       domain.GridSpec
	confidence float64
}

type ConstrainOption func(*ConstrainMass)

func WithGrid(g domain.GridSpec) ConstrainOption {
	return func(c *ConstrainMass) { c.grid = g }
}

func WithConfidence(conf float64) ConstrainOption {
	return func(c *ConstrainMass) {
		if conf > 0 && conf < 1 {
			c.confidence = conf
		}
	}
}

func NewConstrainMass(opts ...ConstrainOption) *ConstrainMass {
	c := &ConstrainMass{
		grid:       domain.DefaultGridSpec(),
		confidence: 0.95,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute produces one constraint per grid point, ordered by perturber period.
func (c *ConstrainMass) Execute(ctx context.Context, target domain.Target, ttv domain.TTVSeries) (domain.ConstraintGrid, error) {
	if err := ctx.Err(); err != nil {
		return domain.ConstraintGrid{}, err
	}
	if err := target.Validate(); err != nil {
		return domain.ConstraintGrid{}, err
	}
	if len(ttv.Points) == 0 {
		return domain.ConstraintGrid{}, &domain.OpError{
			Op:   "usecase.constrain_mass",
			Kind: domain.KindBadData,
			Err:  fmt.Errorf("%w: empty TTV series", domain.ErrBadData),
		}
	}
	if c.grid.Steps < 2 || c.grid.MinPeriodRatio <= 0 || c.grid.MaxPeriodRatio <= c.grid.MinPeriodRatio {
		return domain.ConstraintGrid{}, &domain.OpError{
			Op:   "usecase.constrain_mass",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: bad grid spec %+v", domain.ErrInvalidConfig, c.grid),
		}
	}

	limit := c.amplitudeLimit(ttv)

	period := target.Ephemeris.Period.N
	starMass := target.Star.MassMsun.N

	logMin := math.Log(c.grid.MinPeriodRatio)
	logMax := math.Log(c.grid.MaxPeriodRatio)

	constraints := make([]domain.MassConstraint, 0, c.grid.Steps)
	for i := 0; i < c.grid.Steps; i++ {
		frac := float64(i) / float64(c.grid.Steps-1)
		ratio := math.Exp(logMin + frac*(logMax-logMin))
		perturberPeriod := ratio * period

		perMJup := amplitudePerMJup(period, perturberPeriod, starMass)
		if perMJup <= 0 || !isFinite(perMJup) {
			return domain.ConstraintGrid{}, &domain.OpError{
				Op:   "usecase.constrain_mass",
				Kind: domain.KindNumeric,
				Err: fmt.Errorf("%w: amplitude model not usable at P_c=%g d",
					domain.ErrNumeric, perturberPeriod),
			}
		}

		boundMJup := limit / perMJup
		constraints = append(constraints, domain.MassConstraint{
			PerturberPeriodDays:    perturberPeriod,
			UpperBoundMJup:         boundMJup,
			UpperBoundMEarth:       boundMJup * domain.MJupToMSun / domain.MEarthToMSun,
			AmplitudeLimitSeconds:  limit,
			ExpectedSecondsPerMJup: perMJup,
			Confidence:             c.confidence,
		})
	}

	return domain.ConstraintGrid{Constraints: constraints}, nil
}

// amplitudeLimit is the TTV amplitude the data allow: the measured amplitude
// or, when that is consistent with zero, the z-scaled median timing error.
func (c *ConstrainMass) amplitudeLimit(ttv domain.TTVSeries) float64 {
	z := math.Sqrt2 * math.Erfinv(c.confidence)
	floor := z * ttv.MedianErrSeconds()
	if ttv.AmplitudeSeconds > floor {
		return ttv.AmplitudeSeconds
	}
	return floor
}

// amplitudePerMJup returns the expected TTV amplitude, in seconds, produced
// by a 1 M_Jup companion at the given perturber period.
func amplitudePerMJup(periodDays, perturberPeriodDays, starMassMsun float64) float64 {
	massRatio := domain.MJupToMSun / starMassMsun

	var amplitudeDays float64
	if perturberPeriodDays < periodDays {
		// Interior companion: the star (and thus the transiting planet's
		// orbit) wobbles around the inner pair's barycenter.
		ratio := perturberPeriodDays / periodDays
		amplitudeDays = massRatio * math.Pow(ratio, 2.0/3.0) * periodDays / (2 * math.Pi)
	} else {
		// Exterior companion: leading tidal perturbation of the inner orbit.
		ratio := periodDays / perturberPeriodDays
		amplitudeDays = massRatio * periodDays * ratio * ratio / (2 * math.Pi)
	}

	return amplitudeDays * domain.DayToSec
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
