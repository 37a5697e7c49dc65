package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

// FetchTarget resolves a planet's catalog parameters from the exoplanet
// archive and writes a target file into the workspace. Light-curve files are
// added by the user afterwards; fetch only fills in the parameters.
type FetchTarget struct {
	archive ports.ArchiveClient
	writer  ports.TargetWriter
}

func NewFetchTarget(archive ports.ArchiveClient, writer ports.TargetWriter) *FetchTarget {
	return &FetchTarget{archive: archive, writer: writer}
}

func (f *FetchTarget) Execute(ctx context.Context, root, planetName string, force bool) (domain.Target, string, error) {
	name := strings.TrimSpace(planetName)
	if name == "" {
		return domain.Target{}, "", &domain.OpError{
			Op:   "usecase.fetch_target",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: planet name is required", domain.ErrInvalidConfig),
		}
	}

	target, err := f.archive.Properties(ctx, name)
	if err != nil {
		return domain.Target{}, "", err
	}

	tic, err := f.archive.ResolveTIC(ctx, name)
	if err != nil {
		return domain.Target{}, "", err
	}
	target.TIC = tic

	if err := target.Ephemeris.Validate(); err != nil {
		return domain.Target{}, "", &domain.OpError{
			Op:   "usecase.fetch_target",
			Kind: domain.KindArchive,
			Err:  fmt.Errorf("archive returned unusable ephemeris for %q: %w", name, err),
		}
	}

	path, err := f.writer.SaveTarget(root, target, force)
	if err != nil {
		return domain.Target{}, "", err
	}
	return target, path, nil
}
