package resultstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/troyzx/cmat/internal/domain"
)

func sampleRun(name string, started time.Time) domain.AnalysisRun {
	return domain.AnalysisRun{
		TargetName: name,
		TargetPath: "targets/" + name + ".yaml",
		StartedAt:  started,
		Transits: []domain.TransitTime{
			{Epoch: 0, Center: domain.Value{N: 2458001.0, S: 0.0004}, Depth: 0.012, Points: 120},
			{Epoch: 1, Center: domain.Value{N: 2458003.5, S: 0.0005}, Depth: 0.011, Points: 118},
		},
		TTV: domain.TTVSeries{
			Points: []domain.TTVPoint{
				{Epoch: 0, Seconds: 12, ErrSeconds: 35},
				{Epoch: 1, Seconds: -12, ErrSeconds: 41},
			},
			RMSSeconds: 12,
		},
	}
}

func TestSaveRunAndLoadRun(t *testing.T) {
	root := t.TempDir()
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	store := NewJSONStore(root, domain.DefaultConfig(), WithNow(func() time.Time { return fixed }))

	run := sampleRun("WASP-12 b", fixed)
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if want := "20260314T150926Z_wasp-12-b"; id != want {
		t.Fatalf("id = %q, want %q", id, want)
	}

	loaded, err := store.LoadRun(id)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.ID != id {
		t.Fatalf("loaded.ID = %q, want %q", loaded.ID, id)
	}
	if loaded.TargetName != run.TargetName {
		t.Fatalf("target = %q", loaded.TargetName)
	}
	if len(loaded.Transits) != 2 || loaded.Transits[0].Center.N != 2458001.0 {
		t.Fatalf("transits not round-tripped: %+v", loaded.Transits)
	}
	if len(loaded.TTV.Points) != 2 {
		t.Fatalf("ttv points = %d", len(loaded.TTV.Points))
	}
}

func TestSaveRunWritesIndex(t *testing.T) {
	root := t.TempDir()
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	store := NewJSONStore(root, domain.DefaultConfig(), WithNow(func() time.Time { return fixed }))

	if _, err := store.SaveRun(sampleRun("WASP-12 b", fixed)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(root, "results", "index.jsonl"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	line := strings.TrimSpace(string(b))
	if !strings.Contains(line, `"target":"WASP-12 b"`) {
		t.Fatalf("index line = %s", line)
	}
	if !strings.Contains(line, `"transits":2`) {
		t.Fatalf("index line = %s", line)
	}
}

func TestLoadRunByStoredRunID(t *testing.T) {
	root := t.TempDir()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewJSONStore(root, domain.DefaultConfig(), WithNow(func() time.Time { return fixed }))

	run := sampleRun("WASP-12 b", fixed)
	run.ID = "3f1c6a1e-9a2b-4a70-8f4e-2d1b5c9e7a11"
	fileID, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if fileID == run.ID {
		t.Fatalf("expected filename id distinct from run id, got %q", fileID)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len = %d, want 1", len(runs))
	}
	if runs[0].ID != run.ID {
		t.Fatalf("listed ID = %q, want %q", runs[0].ID, run.ID)
	}

	// Both the listed run ID and the filename id must resolve.
	for _, id := range []string{run.ID, fileID} {
		loaded, err := store.LoadRun(id)
		if err != nil {
			t.Fatalf("LoadRun(%q): %v", id, err)
		}
		if loaded.TargetName != run.TargetName {
			t.Fatalf("LoadRun(%q) target = %q", id, loaded.TargetName)
		}
	}
}

func TestLoadRunNotFound(t *testing.T) {
	store := NewJSONStore(t.TempDir(), domain.DefaultConfig())

	_, err := store.LoadRun("nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("kind = %v, want not_found", err)
	}
}

func TestListRunsSortedByStart(t *testing.T) {
	root := t.TempDir()
	store := NewJSONStore(root, domain.DefaultConfig())

	later := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if _, err := store.SaveRun(sampleRun("target-b", later)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(sampleRun("target-a", earlier)); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].TargetName != "target-a" || runs[1].TargetName != "target-b" {
		t.Fatalf("order = %s, %s", runs[0].TargetName, runs[1].TargetName)
	}
}

func TestListRunsEmptyWorkspace(t *testing.T) {
	store := NewJSONStore(t.TempDir(), domain.DefaultConfig())

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("len = %d, want 0", len(runs))
	}
}
