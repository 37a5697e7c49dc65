package tui

import "github.com/troyzx/cmat/internal/domain"

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type targetsLoadedMsg struct {
	root string
	refs []domain.TargetRef
	err  error
}

type runsLoadedMsg struct {
	root string
	runs []domain.AnalysisRun
	err  error
}

type analysisDoneMsg struct {
	run domain.AnalysisRun
	id  string
	err error
}
