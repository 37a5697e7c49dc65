package domain

import (
	"fmt"
	"strings"
)

// DataFormat identifies a light-curve file format.
type DataFormat string

const (
	FormatCSV  DataFormat = "csv"
	FormatFITS DataFormat = "fits"
)

// ParseDataFormat maps a user-supplied format string to a DataFormat.
func ParseDataFormat(s string) (DataFormat, error) {
	switch DataFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatFITS:
		return FormatFITS, nil
	default:
		return "", fmt.Errorf("unsupported data format %q", s)
	}
}

// DataRef points at a light-curve file inside the workspace.
type DataRef struct {
	Path   string     `json:"path"`
	Format DataFormat `json:"format"`
}

// Star holds the stellar parameters the mass inversion needs.
type Star struct {
	MassMsun Value `json:"mass_msun"`
}

// TransitShape holds the prior transit geometry used to window and seed fits.
type TransitShape struct {
	Depth        float64 `json:"depth"`
	DurationDays float64 `json:"duration_days"`
}

// Target is one planetary system under analysis.
type Target struct {
	Name      string       `json:"name"`
	TIC       int64        `json:"tic"`
	Star      Star         `json:"star"`
	Ephemeris Ephemeris    `json:"ephemeris"`
	Transit   TransitShape `json:"transit"`
	Data      []DataRef    `json:"data"`
}

// Validate checks what the analysis pipeline requires.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &OpError{
			Op:   "target.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: target name is required", ErrInvalidConfig),
		}
	}
	if err := t.Ephemeris.Validate(); err != nil {
		return err
	}
	if t.Star.MassMsun.N <= 0 {
		return &OpError{
			Op:   "target.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: stellar mass must be positive", ErrInvalidConfig),
		}
	}
	if t.Transit.DurationDays <= 0 {
		return &OpError{
			Op:   "target.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: transit duration must be positive", ErrInvalidConfig),
		}
	}
	return nil
}

// TargetRef is a lightweight reference to a target file on disk.
type TargetRef struct {
	Name string
	Path string
}
