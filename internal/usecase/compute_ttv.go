package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/troyzx/cmat/internal/domain"
)

// ComputeTTV refits a linear ephemeris through the measured transit centers
// and returns the observed-minus-calculated residuals in seconds.
type ComputeTTV struct{}

func NewComputeTTV() *ComputeTTV {
	return &ComputeTTV{}
}

// Execute needs at least three transit times: two pin the line, a third can
// deviate from it.
func (c *ComputeTTV) Execute(ctx context.Context, prior domain.Ephemeris, transits []domain.TransitTime) (domain.TTVSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.TTVSeries{}, err
	}
	if len(transits) < 3 {
		return domain.TTVSeries{}, &domain.OpError{
			Op:   "usecase.compute_ttv",
			Kind: domain.KindBadData,
			Err: fmt.Errorf("%w: need at least 3 transit times, got %d",
				domain.ErrBadData, len(transits)),
		}
	}

	slope, intercept, slopeErr, interceptErr, err := weightedLinearFit(transits)
	if err != nil {
		return domain.TTVSeries{}, err
	}

	refined := domain.Ephemeris{
		Period:    domain.V(slope, slopeErr),
		ZeroEpoch: domain.V(intercept, interceptErr),
	}

	firstEpoch := transits[0].Epoch

	points := make([]domain.TTVPoint, 0, len(transits))
	var sumSq, sumRes float64
	for _, tt := range transits {
		calc := intercept + slope*float64(tt.Epoch)
		resSec := (tt.Center.N - calc) * domain.DayToSec

		// Per-point error: measured center error plus the prior period
		// error accumulated over elapsed epochs (the calculated times
		// share the refitted line, the prior sets how well we know it).
		elapsed := math.Abs(float64(tt.Epoch - firstEpoch))
		errSec := (tt.Center.S + prior.Period.S*elapsed) * domain.DayToSec

		points = append(points, domain.TTVPoint{
			Epoch:      tt.Epoch,
			Seconds:    resSec,
			ErrSeconds: errSec,
		})
		sumRes += resSec
	}

	// Mean-subtract so the series is a pure variation signal.
	mean := sumRes / float64(len(points))
	for i := range points {
		points[i].Seconds -= mean
		sumSq += points[i].Seconds * points[i].Seconds
	}

	series := domain.TTVSeries{
		Points:     points,
		RMSSeconds: math.Sqrt(sumSq / float64(len(points))),
		Refined:    refined,
	}
	series.AmplitudeSeconds = series.MaxAbsResidual()
	return series, nil
}

// weightedLinearFit solves center = intercept + slope*epoch by weighted least
// squares, weights from the center uncertainties.
func weightedLinearFit(transits []domain.TransitTime) (slope, intercept, slopeErr, interceptErr float64, err error) {
	var sw, swx, swy, swxx, swxy float64
	for _, tt := range transits {
		w := 1.0
		if tt.Center.S > 0 {
			w = 1 / (tt.Center.S * tt.Center.S)
		}
		x := float64(tt.Epoch)
		y := tt.Center.N
		sw += w
		swx += w * x
		swy += w * y
		swxx += w * x * x
		swxy += w * x * y
	}

	det := sw*swxx - swx*swx
	if det <= 0 || math.IsNaN(det) {
		return 0, 0, 0, 0, &domain.OpError{
			Op:   "usecase.compute_ttv",
			Kind: domain.KindNumeric,
			Err:  fmt.Errorf("%w: degenerate epoch coverage", domain.ErrNumeric),
		}
	}

	slope = (sw*swxy - swx*swy) / det
	intercept = (swxx*swy - swx*swxy) / det
	slopeErr = math.Sqrt(sw / det)
	interceptErr = math.Sqrt(swxx / det)
	return slope, intercept, slopeErr, interceptErr, nil
}
