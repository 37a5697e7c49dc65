package usecase

import (
	"context"
	"fmt"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/usecase/transitfit"
)

// ExtractTransits slices a light curve into per-epoch windows around the
// predicted transit centers and fits each window for its mid-time.
type ExtractTransits struct {
	fitConfig       transitfit.Config
	windowDurations float64
}

type ExtractOption func(*ExtractTransits)

// WithFitConfig overrides the single-transit fit configuration.
func WithFitConfig(cfg transitfit.Config) ExtractOption {
	return func(e *ExtractTransits) { e.fitConfig = cfg }
}

// WithWindowDurations sets the window half-width in transit durations.
func WithWindowDurations(k float64) ExtractOption {
	return func(e *ExtractTransits) {
		if k > 0 {
			e.windowDurations = k
		}
	}
}

func NewExtractTransits(opts ...ExtractOption) *ExtractTransits {
	e := &ExtractTransits{
		fitConfig:       transitfit.DefaultConfig(),
		windowDurations: 1.5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute fits every transit epoch covered by the curve. Windows that cannot
// be fit are reported as skipped, not as a pipeline failure.
func (e *ExtractTransits) Execute(ctx context.Context, target domain.Target, curve domain.LightCurve) ([]domain.TransitTime, []domain.SkippedEpoch, error) {
	if err := target.Validate(); err != nil {
		return nil, nil, err
	}
	if err := curve.Validate(); err != nil {
		return nil, nil, err
	}

	eph := target.Ephemeris
	tMin := curve.Samples[0].TimeBJD
	tMax := curve.Samples[len(curve.Samples)-1].TimeBJD
	first, last := eph.EpochSpan(tMin, tMax)

	half := e.windowDurations * target.Transit.DurationDays

	var transits []domain.TransitTime
	var skipped []domain.SkippedEpoch

	for epoch := first; epoch <= last; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		center := eph.PredictedCenter(epoch)
		window := curve.Window(center.N-half, center.N+half)
		if len(window) == 0 {
			continue // data gap, not worth reporting
		}

		tt, err := transitfit.Fit(window, transitfit.Guess{
			Epoch:        epoch,
			CenterBJD:    center.N,
			DurationDays: target.Transit.DurationDays,
			Depth:        target.Transit.Depth,
		}, e.fitConfig)
		if err != nil {
			skipped = append(skipped, domain.SkippedEpoch{
				Epoch:  epoch,
				Reason: err.Error(),
			})
			continue
		}

		transits = append(transits, tt)
	}

	if len(transits) == 0 {
		return nil, skipped, &domain.OpError{
			Op:   "usecase.extract_transits",
			Kind: domain.KindBadData,
			Err:  fmt.Errorf("%w: no transit window produced a usable fit", domain.ErrBadData),
		}
	}

	domain.SortTransitTimes(transits)
	return transits, skipped, nil
}
