package ports

import "github.com/troyzx/cmat/internal/domain"

// TargetLoader loads targets from a source (e.g., filesystem).
type TargetLoader interface {
	LoadTarget(path string) (domain.Target, error)
	ListTargets(root string) ([]domain.TargetRef, error)
}

// TargetWriter persists a target definition (used by fetch).
type TargetWriter interface {
	SaveTarget(root string, target domain.Target, force bool) (path string, err error)
}
