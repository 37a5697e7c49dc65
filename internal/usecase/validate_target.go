package usecase

import (
	"context"

	"github.com/troyzx/cmat/internal/ports"
)

// ValidateTarget checks that a target definition and all its referenced data
// files load cleanly, without running any fit.
type ValidateTarget struct {
	targets ports.TargetLoader
	loaders CurveLoaders
}

func NewValidateTarget(targets ports.TargetLoader, loaders CurveLoaders) *ValidateTarget {
	return &ValidateTarget{targets: targets, loaders: loaders}
}

func (v *ValidateTarget) Execute(ctx context.Context, root, targetPath string) error {
	target, err := v.targets.LoadTarget(targetPath)
	if err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	_, err = LoadTargetCurve(ctx, root, target, v.loaders)
	return err
}
