// Package render builds plain-text views of analysis results: an ASCII
// scatter of timing residuals and tables for transits and mass constraints.
// Both the CLI pretty output and the TUI run viewer use these builders.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/troyzx/cmat/internal/domain"
)

const (
	defaultPlotWidth  = 64
	defaultPlotHeight = 15
)

// TTVPlot draws residual seconds against epoch. Points render as 'o' with
// vertical error bars, and the zero line of the refitted ephemeris as dashes.
func TTVPlot(series domain.TTVSeries) string {
	return TTVPlotSized(series, defaultPlotWidth, defaultPlotHeight)
}

func TTVPlotSized(series domain.TTVSeries, width, height int) string {
	if len(series.Points) == 0 {
		return "no timing residuals\n"
	}
	if width < 16 {
		width = 16
	}
	if height < 5 {
		height = 5
	}

	minEpoch, maxEpoch := series.Points[0].Epoch, series.Points[0].Epoch
	span := 0.0
	for _, p := range series.Points {
		if p.Epoch < minEpoch {
			minEpoch = p.Epoch
		}
		if p.Epoch > maxEpoch {
			maxEpoch = p.Epoch
		}
		if v := math.Abs(p.Seconds) + p.ErrSeconds; v > span {
			span = v
		}
	}
	if span == 0 {
		span = 1
	}
	// Headroom so extreme points do not sit on the frame.
	span *= 1.1

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	zeroRow := height / 2
	for j := 0; j < width; j++ {
		grid[zeroRow][j] = '-'
	}

	col := func(epoch int) int {
		if maxEpoch == minEpoch {
			return width / 2
		}
		return int(math.Round(float64(epoch-minEpoch) / float64(maxEpoch-minEpoch) * float64(width-1)))
	}
	row := func(seconds float64) int {
		r := zeroRow - int(math.Round(seconds/span*float64(zeroRow)))
		if r < 0 {
			r = 0
		}
		if r >= height {
			r = height - 1
		}
		return r
	}

	for _, p := range series.Points {
		c := col(p.Epoch)
		top := row(p.Seconds + p.ErrSeconds)
		bottom := row(p.Seconds - p.ErrSeconds)
		for r := top; r <= bottom; r++ {
			if grid[r][c] == ' ' || grid[r][c] == '-' {
				grid[r][c] = '|'
			}
		}
		grid[row(p.Seconds)][c] = 'o'
	}

	var b strings.Builder
	b.Grow((width + 16) * (height + 3))

	topLabel := fmt.Sprintf("%+.0fs", span)
	bottomLabel := fmt.Sprintf("%+.0fs", -span)
	labelWidth := len(topLabel)
	if len(bottomLabel) > labelWidth {
		labelWidth = len(bottomLabel)
	}

	for i, line := range grid {
		label := strings.Repeat(" ", labelWidth)
		switch i {
		case 0:
			label = fmt.Sprintf("%*s", labelWidth, topLabel)
		case zeroRow:
			label = fmt.Sprintf("%*s", labelWidth, "0")
		case height - 1:
			label = fmt.Sprintf("%*s", labelWidth, bottomLabel)
		}
		b.WriteString(label)
		b.WriteString(" |")
		b.WriteString(string(line))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(" +")
	b.WriteString(strings.Repeat("-", width))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(fmt.Sprintf("  epoch %d .. %d   rms=%.1fs  amp=%.1fs\n",
		minEpoch, maxEpoch, series.RMSSeconds, series.AmplitudeSeconds))

	return b.String()
}

// TransitTable lists fitted mid-transit times.
func TransitTable(transits []domain.TransitTime) string {
	if len(transits) == 0 {
		return "no transits\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%6s  %16s  %10s  %8s  %6s\n", "epoch", "center (BJD)", "err (s)", "depth", "points")
	for _, tr := range transits {
		fmt.Fprintf(&b, "%6d  %16.6f  %10.1f  %8.5f  %6d\n",
			tr.Epoch, tr.Center.N, tr.Center.S*domain.DayToSec, tr.Depth, tr.Points)
	}
	return b.String()
}

// ConstraintTable lists mass upper bounds over the perturber-period grid.
func ConstraintTable(grid domain.ConstraintGrid) string {
	if len(grid.Constraints) == 0 {
		return "no constraints\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%14s  %14s  %14s  %12s\n",
		"P_c (days)", "M < (M_Jup)", "M < (M_Earth)", "limit (s)")
	for _, c := range grid.Constraints {
		fmt.Fprintf(&b, "%14.3f  %14s  %14s  %12.1f\n",
			c.PerturberPeriodDays,
			formatBound(c.UpperBoundMJup),
			formatBound(c.UpperBoundMEarth),
			c.AmplitudeLimitSeconds)
	}

	if best, ok := grid.Best(); ok {
		fmt.Fprintf(&b, "\ntightest bound: M < %s M_Jup (%s M_Earth) at P_c = %.3f d, %.0f%% confidence\n",
			formatBound(best.UpperBoundMJup),
			formatBound(best.UpperBoundMEarth),
			best.PerturberPeriodDays,
			best.Confidence*100)
	}
	return b.String()
}

// formatBound keeps small bounds readable and large ones compact.
func formatBound(v float64) string {
	switch {
	case v == 0 || math.IsInf(v, 0) || math.IsNaN(v):
		return "-"
	case v >= 1000:
		return fmt.Sprintf("%.3g", v)
	case v >= 1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
