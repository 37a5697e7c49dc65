package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/troyzx/cmat/internal/infra/csvcurve"
	"github.com/troyzx/cmat/internal/infra/fitscurve"
	"github.com/troyzx/cmat/internal/infra/resultstore"
	"github.com/troyzx/cmat/internal/infra/workspacefinder"
	"github.com/troyzx/cmat/internal/infra/yamltarget"
	"github.com/troyzx/cmat/internal/ports"
	"github.com/troyzx/cmat/internal/usecase"
	"github.com/troyzx/cmat/internal/usecase/transitfit"
)

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(ports.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadTargets(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return targetsLoadedMsg{root: root, err: err}
		}

		loader := yamltarget.NewLoader(
			yamltarget.WithTargetsDir(cfg.Paths.TargetsDir),
		)

		refs, err := loader.ListTargets(root)
		return targetsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadRuns(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return runsLoadedMsg{root: root, err: err}
		}

		store := resultstore.NewJSONStore(root, cfg)
		runs, err := store.ListRuns()
		return runsLoadedMsg{root: root, runs: runs, err: err}
	}
}

func listenAnalysis(ch <-chan analysisDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return analysisDoneMsg{err: errors.New("analysis channel closed")}
		}
		return msg
	}
}

func startAnalysisAsync(root, targetPath string, log *slog.Logger) (chan analysisDoneMsg, tea.Cmd) {
	ch := make(chan analysisDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("analysis.start", "workspace", root, "target_path", targetPath)

		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			log.Error("analysis.load_config.failed", "err", err)
			ch <- analysisDoneMsg{err: err}
			return
		}

		targetLoader := yamltarget.NewLoader(
			yamltarget.WithTargetsDir(cfg.Paths.TargetsDir),
		)
		loaders := usecase.CurveLoaders{
			CSV:  csvcurve.NewLoader(),
			FITS: fitscurve.NewLoader(),
		}
		store := resultstore.NewJSONStore(root, cfg, resultstore.WithIndex(true))

		fitCfg := transitfit.DefaultConfig()
		if cfg.Defaults.MinPoints > 0 {
			fitCfg.MinPoints = cfg.Defaults.MinPoints
		}
		uc := usecase.NewAnalyze(targetLoader, loaders, store,
			usecase.WithAnalyzeStages(
				usecase.NewExtractTransits(
					usecase.WithFitConfig(fitCfg),
					usecase.WithWindowDurations(cfg.Defaults.WindowDurations),
				),
				usecase.NewComputeTTV(),
				usecase.NewConstrainMass(
					usecase.WithGrid(cfg.Grid),
					usecase.WithConfidence(cfg.Defaults.Confidence),
				),
			))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, root, targetPath)
		if execErr != nil {
			log.Error("analysis.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("analysis.ok", "saved_id", id, "transits", len(run.Transits))
		}

		ch <- analysisDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenAnalysis(ch)
}
