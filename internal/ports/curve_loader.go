package ports

import "github.com/troyzx/cmat/internal/domain"

// LightCurveLoader reads a photometric time series from one data file.
type LightCurveLoader interface {
	LoadCurve(path string) (domain.LightCurve, error)
}
