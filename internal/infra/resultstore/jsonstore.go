// Package resultstore persists analysis runs as JSON files under the
// workspace results directory, one file per run plus a JSONL index.
package resultstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

const defaultResultsDir = "results"

type JSONStore struct {
	rootDir    string
	dirName    string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: results/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	dir := cfg.Paths.ResultsDir
	if strings.TrimSpace(dir) == "" {
		dir = defaultResultsDir
	}

	s := &JSONStore{
		rootDir:    root,
		dirName:    dir,
		writeIndex: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ResultStore = (*JSONStore)(nil)

func (s *JSONStore) SaveRun(run domain.AnalysisRun) (string, error) {
	dir := filepath.Join(s.rootDir, s.dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "resultstore.mkdir",
			Kind: domain.KindArchive,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}

	targetPart := run.TargetName
	if strings.TrimSpace(targetPart) == "" {
		targetPart = strings.TrimSuffix(filepath.Base(run.TargetPath), filepath.Ext(run.TargetPath))
	}
	slug := slugify(targetPart)
	if slug == "" {
		slug = "run"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(dir, filename)

	if strings.TrimSpace(toSave.ID) == "" {
		toSave.ID = id
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "resultstore.marshal",
			Kind: domain.KindArchive,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "resultstore.write",
			Kind: domain.KindArchive,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "resultstore.rename",
			Kind: domain.KindArchive,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, toSave)
	}

	return id, nil
}

// LoadRun resolves id either as a result filename (minus .json) or as the
// run ID recorded inside an artifact, so IDs surfaced by ListRuns always
// load back.
func (s *JSONStore) LoadRun(id string) (domain.AnalysisRun, error) {
	path := filepath.Join(s.rootDir, s.dirName, id+".json")

	run, err := s.loadFile(path)
	if err == nil {
		return run, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return domain.AnalysisRun{}, err
	}

	if run, ok := s.findByRunID(id); ok {
		return run, nil
	}
	return domain.AnalysisRun{}, err
}

func (s *JSONStore) loadFile(path string) (domain.AnalysisRun, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindArchive
		if os.IsNotExist(err) {
			kind = domain.KindNotFound
		}
		return domain.AnalysisRun{}, &domain.OpError{
			Op:   "resultstore.load",
			Kind: kind,
			Path: path,
			Err:  err,
		}
	}

	var run domain.AnalysisRun
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.AnalysisRun{}, &domain.OpError{
			Op:   "resultstore.load",
			Kind: domain.KindBadData,
			Path: path,
			Err:  err,
		}
	}
	return run, nil
}

// findByRunID scans the results directory for an artifact whose stored
// run ID matches id.
func (s *JSONStore) findByRunID(id string) (domain.AnalysisRun, bool) {
	runs, err := s.ListRuns()
	if err != nil {
		return domain.AnalysisRun{}, false
	}
	for _, run := range runs {
		if run.ID == id {
			return run, true
		}
	}
	return domain.AnalysisRun{}, false
}

func (s *JSONStore) ListRuns() ([]domain.AnalysisRun, error) {
	dir := filepath.Join(s.rootDir, s.dirName)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.AnalysisRun{}, nil
		}
		return nil, &domain.OpError{
			Op:   "resultstore.list",
			Kind: domain.KindArchive,
			Path: dir,
			Err:  err,
		}
	}

	runs := make([]domain.AnalysisRun, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || name == "index.jsonl" {
			continue
		}

		run, err := s.loadFile(filepath.Join(dir, name))
		if err != nil {
			// Skip unreadable artifacts rather than failing the whole listing.
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

func (s *JSONStore) appendIndex(dir, id, filename string, run domain.AnalysisRun) error {
	type idx struct {
		ID        string    `json:"id"`
		File      string    `json:"file"`
		Target    string    `json:"target"`
		Transits  int       `json:"transits"`
		StartedAt time.Time `json:"started_at"`
	}
	line, err := json.Marshal(idx{
		ID:        id,
		File:      filename,
		Target:    run.TargetName,
		Transits:  len(run.Transits),
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
