package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

// Analyze runs the full pipeline for one target: load curves, extract transit
// times, compute the TTV series, constrain the companion mass, and persist
// the run artifact.
type Analyze struct {
	targets ports.TargetLoader
	loaders CurveLoaders
	store   ports.ResultStore // nil disables persistence

	extract   *ExtractTransits
	ttv       *ComputeTTV
	constrain *ConstrainMass

	newID func() string
	now   func() time.Time
}

type AnalyzeOption func(*Analyze)

// WithAnalyzeStages overrides the stage implementations (used by the CLI to
// carry workspace configuration into the stages).
func WithAnalyzeStages(extract *ExtractTransits, ttv *ComputeTTV, constrain *ConstrainMass) AnalyzeOption {
	return func(a *Analyze) {
		if extract != nil {
			a.extract = extract
		}
		if ttv != nil {
			a.ttv = ttv
		}
		if constrain != nil {
			a.constrain = constrain
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) AnalyzeOption {
	return func(a *Analyze) { a.now = now }
}

// WithIDGenerator is useful for tests.
func WithIDGenerator(gen func() string) AnalyzeOption {
	return func(a *Analyze) { a.newID = gen }
}

func NewAnalyze(targets ports.TargetLoader, loaders CurveLoaders, store ports.ResultStore, opts ...AnalyzeOption) *Analyze {
	a := &Analyze{
		targets:   targets,
		loaders:   loaders,
		store:     store,
		extract:   NewExtractTransits(),
		ttv:       NewComputeTTV(),
		constrain: NewConstrainMass(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute returns the run and, when persistence is enabled, the stored run ID.
func (a *Analyze) Execute(ctx context.Context, root, targetPath string) (domain.AnalysisRun, string, error) {
	target, err := a.targets.LoadTarget(targetPath)
	if err != nil {
		return domain.AnalysisRun{}, "", err
	}

	run := domain.AnalysisRun{
		ID:         a.newID(),
		TargetName: target.Name,
		TargetPath: targetPath,
		StartedAt:  a.now(),
	}

	curve, err := LoadTargetCurve(ctx, root, target, a.loaders)
	if err != nil {
		return run, "", err
	}

	transits, skipped, err := a.extract.Execute(ctx, target, curve)
	run.Skipped = skipped
	if err != nil {
		return run, "", err
	}
	run.Transits = transits

	ttv, err := a.ttv.Execute(ctx, target.Ephemeris, transits)
	if err != nil {
		return run, "", err
	}
	run.TTV = ttv

	grid, err := a.constrain.Execute(ctx, target, ttv)
	if err != nil {
		return run, "", err
	}
	run.Constraints = grid
	run.EndedAt = a.now()

	if a.store == nil {
		return run, "", nil
	}
	id, err := a.store.SaveRun(run)
	if err != nil {
		return run, "", err
	}
	return run, id, nil
}
