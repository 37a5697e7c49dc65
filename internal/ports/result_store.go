package ports

import "github.com/troyzx/cmat/internal/domain"

// ResultStore persists analysis runs for reproducibility.
type ResultStore interface {
	SaveRun(run domain.AnalysisRun) (id string, err error)
	LoadRun(id string) (domain.AnalysisRun, error)
	ListRuns() ([]domain.AnalysisRun, error)
}
