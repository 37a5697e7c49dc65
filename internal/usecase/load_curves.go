package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

// CurveLoaders bundles one loader per supported light-curve format.
type CurveLoaders struct {
	CSV  ports.LightCurveLoader
	FITS ports.LightCurveLoader
}

// For picks the loader for a data format.
func (c CurveLoaders) For(format domain.DataFormat) (ports.LightCurveLoader, error) {
	switch format {
	case domain.FormatCSV:
		if c.CSV != nil {
			return c.CSV, nil
		}
	case domain.FormatFITS:
		if c.FITS != nil {
			return c.FITS, nil
		}
	}
	return nil, &domain.OpError{
		Op:   "usecase.load_curves",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: no loader for format %q", domain.ErrInvalidConfig, format),
	}
}

// LoadTargetCurve loads every data file the target references, relative to
// the workspace root, and merges them into one ordered curve.
func LoadTargetCurve(ctx context.Context, root string, target domain.Target, loaders CurveLoaders) (domain.LightCurve, error) {
	if len(target.Data) == 0 {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "usecase.load_curves",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: target %q references no data files", domain.ErrInvalidConfig, target.Name),
		}
	}

	merged := domain.LightCurve{Target: target.Name}
	for _, ref := range target.Data {
		if err := ctx.Err(); err != nil {
			return domain.LightCurve{}, err
		}

		loader, err := loaders.For(ref.Format)
		if err != nil {
			return domain.LightCurve{}, err
		}

		path := ref.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		curve, err := loader.LoadCurve(path)
		if err != nil {
			return domain.LightCurve{}, err
		}

		// Files can come from different sectors or instrument settings
		// with different raw flux scales, so each one is normalized to
		// its own median before merging.
		curve.DropInvalid()
		curve.NormalizeByMedian()
		merged.Merge(curve)
	}
	if merged.Source == "" && len(target.Data) > 0 {
		merged.Source = target.Data[0].Path
	}
	return merged, merged.Validate()
}
