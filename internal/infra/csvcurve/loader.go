// Package csvcurve reads photometric light curves and pre-computed TTV
// series from CSV files.
//
// Header names are matched case-insensitively against a set of aliases, so
// exported archive tables load without renaming columns. Malformed rows are
// skipped rather than failing the whole file.
package csvcurve

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

var _ ports.LightCurveLoader = (*Loader)(nil)

var (
	timeAliases    = []string{"time", "time_bjd", "bjd", "btjd", "jd", "t"}
	fluxAliases    = []string{"flux", "pdcsap_flux", "sap_flux", "relative_flux", "f"}
	fluxErrAliases = []string{"flux_err", "pdcsap_flux_err", "sap_flux_err", "err", "sigma"}
)

func (l *Loader) LoadCurve(path string) (domain.LightCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "csvcurve.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	curve, err := parseCurve(f, path)
	if err != nil {
		return domain.LightCurve{}, err
	}
	return curve, nil
}

func parseCurve(r io.Reader, path string) (domain.LightCurve, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "csvcurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("failed to read CSV header: %w", err),
		}
	}

	timeCol := findColumn(headers, timeAliases)
	fluxCol := findColumn(headers, fluxAliases)
	errCol := findColumn(headers, fluxErrAliases)
	if timeCol < 0 || fluxCol < 0 {
		return domain.LightCurve{}, &domain.OpError{
			Op:   "csvcurve.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("%w: no time/flux columns in header %v", domain.ErrBadData, headers),
		}
	}

	curve := domain.LightCurve{Source: path}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if timeCol >= len(row) || fluxCol >= len(row) {
			continue
		}

		t, terr := strconv.ParseFloat(strings.TrimSpace(row[timeCol]), 64)
		fl, ferr := strconv.ParseFloat(strings.TrimSpace(row[fluxCol]), 64)
		if terr != nil || ferr != nil {
			continue
		}

		sample := domain.Sample{TimeBJD: t, Flux: fl}
		if errCol >= 0 && errCol < len(row) {
			if e, eerr := strconv.ParseFloat(strings.TrimSpace(row[errCol]), 64); eerr == nil {
				sample.FluxErr = e
			}
		}
		curve.Samples = append(curve.Samples, sample)
	}

	curve.DropInvalid()
	curve.SortByTime()
	if err := curve.Validate(); err != nil {
		return domain.LightCurve{}, err
	}
	return curve, nil
}

// LoadTTV reads a pre-computed TTV series (epoch, ttv_s, err_s columns) for
// constrain-only workflows.
func (l *Loader) LoadTTV(path string) (domain.TTVSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.TTVSeries{}, &domain.OpError{
			Op:   "csvcurve.loadttv",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	return parseTTV(f, path)
}

var (
	epochAliases  = []string{"epoch", "e", "n"}
	ttvAliases    = []string{"ttv_s", "ttv", "oc_s", "o_c", "residual_s"}
	ttvErrAliases = []string{"err_s", "ttv_err_s", "ttv_err", "sigma_s"}
)

func parseTTV(r io.Reader, path string) (domain.TTVSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return domain.TTVSeries{}, &domain.OpError{
			Op:   "csvcurve.loadttv",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("failed to read CSV header: %w", err),
		}
	}

	epochCol := findColumn(headers, epochAliases)
	ttvCol := findColumn(headers, ttvAliases)
	errCol := findColumn(headers, ttvErrAliases)
	if epochCol < 0 || ttvCol < 0 {
		return domain.TTVSeries{}, &domain.OpError{
			Op:   "csvcurve.loadttv",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("%w: no epoch/ttv columns in header %v", domain.ErrBadData, headers),
		}
	}

	var series domain.TTVSeries
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if epochCol >= len(row) || ttvCol >= len(row) {
			continue
		}

		epoch, eerr := strconv.Atoi(strings.TrimSpace(row[epochCol]))
		ttv, terr := strconv.ParseFloat(strings.TrimSpace(row[ttvCol]), 64)
		if eerr != nil || terr != nil {
			continue
		}

		p := domain.TTVPoint{Epoch: epoch, Seconds: ttv}
		if errCol >= 0 && errCol < len(row) {
			if e, err := strconv.ParseFloat(strings.TrimSpace(row[errCol]), 64); err == nil {
				p.ErrSeconds = e
			}
		}
		series.Points = append(series.Points, p)
	}

	if len(series.Points) == 0 {
		return domain.TTVSeries{}, &domain.OpError{
			Op:   "csvcurve.loadttv",
			Kind: domain.KindBadData,
			Path: path,
			Err:  fmt.Errorf("%w: no usable TTV rows", domain.ErrBadData),
		}
	}

	series.RMSSeconds = rms(series.Points)
	series.AmplitudeSeconds = series.MaxAbsResidual()
	return series, nil
}

func rms(points []domain.TTVPoint) float64 {
	var sumSq float64
	for _, p := range points {
		sumSq += p.Seconds * p.Seconds
	}
	n := float64(len(points))
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / n)
}

func findColumn(headers, aliases []string) int {
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		for _, a := range aliases {
			if key == a {
				return i
			}
		}
	}
	return -1
}
