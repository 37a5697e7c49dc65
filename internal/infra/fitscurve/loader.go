// Package fitscurve reads photometric light curves from FITS time-series
// files (TESS/Kepler light-curve products) via astrogo/fitsio.
//
// The first binary-table HDU is used. PDCSAP_FLUX is preferred over
// SAP_FLUX, flagged cadences (QUALITY != 0) are dropped, and truncated
// Julian dates are restored to full BJD using the BJDREFI header card when
// present.
package fitscurve

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

var _ ports.LightCurveLoader = (*Loader)(nil)

func (l *Loader) LoadCurve(path string) (domain.LightCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  err,
		}
	}
	defer fits.Close()

	table, err := firstTable(fits)
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  err,
		}
	}

	curve, err := readCurve(table, path)
	if err != nil {
		return domain.LightCurve{}, err
	}

	curve.DropInvalid()
	curve.SortByTime()
	if err := curve.Validate(); err != nil {
		return domain.LightCurve{}, err
	}
	return curve, nil
}

func firstTable(f *fitsio.File) (*fitsio.Table, error) {
	for _, hdu := range f.HDUs() {
		if table, ok := hdu.(*fitsio.Table); ok {
			return table, nil
		}
	}
	return nil, fmt.Errorf("%w: no binary table HDU", domain.ErrBadData)
}

// pdcRow and sapRow select the flux column pair present in the file.
type pdcRow struct {
	Time    float64 `fits:"TIME"`
	Flux    float32 `fits:"PDCSAP_FLUX"`
	FluxErr float32 `fits:"PDCSAP_FLUX_ERR"`
	Quality int32   `fits:"QUALITY"`
}

type sapRow struct {
	Time    float64 `fits:"TIME"`
	Flux    float32 `fits:"SAP_FLUX"`
	FluxErr float32 `fits:"SAP_FLUX_ERR"`
	Quality int32   `fits:"QUALITY"`
}

func readCurve(table *fitsio.Table, path string) (domain.LightCurve, error) {
	if table.Index("TIME") < 0 {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("%w: no TIME column", domain.ErrBadData),
		}
	}

	usePDC := table.Index("PDCSAP_FLUX") >= 0
	if !usePDC && table.Index("SAP_FLUX") < 0 {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("%w: no PDCSAP_FLUX or SAP_FLUX column", domain.ErrBadData),
		}
	}
	hasQuality := table.Index("QUALITY") >= 0

	offset := timeOffset(table)

	rows, err := table.Read(0, table.NumRows())
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "fitscurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  err,
		}
	}
	defer rows.Close()

	curve := domain.LightCurve{Source: path}
	for rows.Next() {
		var t float64
		var flux, fluxErr float32
		var quality int32

		if usePDC {
			var row pdcRow
			if err := rows.Scan(&row); err != nil {
				return domain.LightCurve{}, scanError(path, err)
			}
			t, flux, fluxErr, quality = row.Time, row.Flux, row.FluxErr, row.Quality
		} else {
			var row sapRow
			if err := rows.Scan(&row); err != nil {
				return domain.LightCurve{}, scanError(path, err)
			}
			t, flux, fluxErr, quality = row.Time, row.Flux, row.FluxErr, row.Quality
		}

		if hasQuality && quality != 0 {
			continue
		}

		curve.Samples = append(curve.Samples, domain.Sample{
			TimeBJD: t + offset,
			Flux:    float64(flux),
			FluxErr: float64(fluxErr),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.LightCurve{}, scanError(path, err)
	}

	return curve, nil
}

// timeOffset restores truncated Julian dates to full BJD. TESS and Kepler
// products record the integer part of the reference date in BJDREFI.
func timeOffset(table *fitsio.Table) float64 {
	card := table.Header().Get("BJDREFI")
	if card == nil {
		return 0
	}
	switch v := card.Value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

func scanError(path string, err error) error {
	return &domain.OpError{
		Op:   "fitscurve.load",
		Kind: domain.KindBadData,
		Path: path,
		Err:  err,
	}
}
