package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/infra/archive"
	"github.com/troyzx/cmat/internal/infra/csvcurve"
	"github.com/troyzx/cmat/internal/infra/fitscurve"
	"github.com/troyzx/cmat/internal/infra/resultstore"
	"github.com/troyzx/cmat/internal/infra/workspacefinder"
	"github.com/troyzx/cmat/internal/infra/yamltarget"
	"github.com/troyzx/cmat/internal/ports"
	"github.com/troyzx/cmat/internal/usecase"
	"github.com/troyzx/cmat/internal/usecase/transitfit"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	targets ports.TargetLoader
	writer  ports.TargetWriter
	loaders usecase.CurveLoaders
	archive ports.ArchiveClient
	store   ports.ResultStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	targetLoader := yamltarget.NewLoader(
		yamltarget.WithTargetsDir(cfg.Paths.TargetsDir),
	)

	loaders := usecase.CurveLoaders{
		CSV:  csvcurve.NewLoader(),
		FITS: fitscurve.NewLoader(),
	}

	client := archive.New(cfg.Archive.BaseURL, time.Duration(cfg.Archive.TimeoutSeconds)*time.Second)
	store := resultstore.NewJSONStore(root, cfg, resultstore.WithIndex(true))

	return &workspaceCtx{
		root:    root,
		cfg:     cfg,
		targets: targetLoader,
		writer:  targetLoader,
		loaders: loaders,
		archive: client,
		store:   store,
	}, nil
}

// stages builds the pipeline stages with the workspace configuration applied.
func (ws *workspaceCtx) stages() (*usecase.ExtractTransits, *usecase.ComputeTTV, *usecase.ConstrainMass) {
	fitCfg := transitfit.DefaultConfig()
	if ws.cfg.Defaults.MinPoints > 0 {
		fitCfg.MinPoints = ws.cfg.Defaults.MinPoints
	}

	extract := usecase.NewExtractTransits(
		usecase.WithFitConfig(fitCfg),
		usecase.WithWindowDurations(ws.cfg.Defaults.WindowDurations),
	)
	ttv := usecase.NewComputeTTV()
	constrain := usecase.NewConstrainMass(
		usecase.WithGrid(ws.cfg.Grid),
		usecase.WithConfidence(ws.cfg.Defaults.Confidence),
	)
	return extract, ttv, constrain
}

func (ws *workspaceCtx) analyze(store ports.ResultStore) *usecase.Analyze {
	extract, ttv, constrain := ws.stages()
	return usecase.NewAnalyze(ws.targets, ws.loaders, store,
		usecase.WithAnalyzeStages(extract, ttv, constrain))
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `cmat init`): %w", wd, err)
	}
	return root, nil
}

func resolveTargetPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("target is required (use --target or -t)")
	}

	// If arg looks like a path (contains separators), resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	targetsDir := filepath.Join(ws.root, ws.cfg.Paths.TargetsDir)

	// "wasp-12-b.yaml" is a file under the targets dir.
	if hasYAMLExt(in) {
		p := filepath.Join(targetsDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	// "wasp-12-b": try .yaml / .yml in the targets dir.
	p1 := filepath.Join(targetsDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(targetsDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	// As a last resort: match by target "name" field.
	refs, err := ws.targets.ListTargets(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("target %q not found in %q", in, targetsDir)
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
