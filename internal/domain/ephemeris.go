package domain

import (
	"fmt"
	"math"
)

// Ephemeris is a constant-period transit ephemeris: predicted centers are
// ZeroEpoch + n*Period for integer epoch n.
type Ephemeris struct {
	Period    Value `json:"period_days"`
	ZeroEpoch Value `json:"zero_epoch_bjd"`
}

// Validate checks that the ephemeris can predict transit times.
func (e Ephemeris) Validate() error {
	if e.Period.N <= 0 {
		return &OpError{
			Op:   "ephemeris.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: period must be positive, got %g", ErrInvalidConfig, e.Period.N),
		}
	}
	if e.ZeroEpoch.N == 0 {
		return &OpError{
			Op:   "ephemeris.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: zero epoch is required", ErrInvalidConfig),
		}
	}
	return nil
}

// Epoch returns the transit cycle number closest to time t.
func (e Ephemeris) Epoch(t float64) int {
	return int(math.Round((t - e.ZeroEpoch.N) / e.Period.N))
}

// PredictedCenter returns the predicted transit center for a cycle number,
// with the period uncertainty propagated over the elapsed epochs.
func (e Ephemeris) PredictedCenter(epoch int) Value {
	return Value{
		N: e.ZeroEpoch.N + float64(epoch)*e.Period.N,
		S: e.ZeroEpoch.S + math.Abs(float64(epoch))*e.Period.S,
	}
}

// EpochSpan returns the first and last cycle numbers covered by [tMin, tMax].
func (e Ephemeris) EpochSpan(tMin, tMax float64) (first, last int) {
	first = int(math.Ceil((tMin - e.ZeroEpoch.N) / e.Period.N))
	last = int(math.Floor((tMax - e.ZeroEpoch.N) / e.Period.N))
	return first, last
}
