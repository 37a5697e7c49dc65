package domain

import (
	"fmt"
	"math"
)

// Unit conversion constants.
const (
	MJupToMSun   = 9.5e-4
	MEarthToMSun = 3.0e-6
	DayToSec     = 24 * 60 * 60
)

// Value is a measured quantity with a 1-sigma uncertainty.
type Value struct {
	N float64 `json:"n"` // nominal value
	S float64 `json:"s"` // standard deviation
}

// V builds a Value.
func V(n, s float64) Value {
	return Value{N: n, S: math.Abs(s)}
}

// Add returns v + w with uncertainties added in quadrature.
func (v Value) Add(w Value) Value {
	return Value{N: v.N + w.N, S: math.Hypot(v.S, w.S)}
}

// MulScalar returns v scaled by k; the uncertainty scales with |k|.
func (v Value) MulScalar(k float64) Value {
	return Value{N: v.N * k, S: v.S * math.Abs(k)}
}

// IsZero reports whether the value carries no information at all.
func (v Value) IsZero() bool {
	return v.N == 0 && v.S == 0
}

func (v Value) String() string {
	return fmt.Sprintf("%g ± %g", v.N, v.S)
}

// WeightedMean combines values using inverse-variance weights.
// Values with zero uncertainty are given unit weight to keep the
// combination defined for exact inputs.
func WeightedMean(vals []Value) Value {
	if len(vals) == 0 {
		return Value{}
	}

	var sumW, sumWX float64
	for _, v := range vals {
		w := 1.0
		if v.S > 0 {
			w = 1.0 / (v.S * v.S)
		}
		sumW += w
		sumWX += w * v.N
	}

	return Value{
		N: sumWX / sumW,
		S: math.Sqrt(1.0 / sumW),
	}
}
