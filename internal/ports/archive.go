package ports

import (
	"context"

	"github.com/troyzx/cmat/internal/domain"
)

// ArchiveClient resolves planet parameters from an exoplanet archive.
type ArchiveClient interface {
	// ResolveTIC maps a planet name to its TESS input catalog ID.
	ResolveTIC(ctx context.Context, planetName string) (int64, error)

	// Properties returns the archive's adopted system parameters.
	Properties(ctx context.Context, planetName string) (domain.Target, error)
}
