package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/testutil"
	"github.com/randalmurphal/storyflow/transcript"
)

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Config{})

	if m.BaseDir() != filepath.Join(".storyflow", "transcripts") {
		t.Errorf("BaseDir() = %q", m.BaseDir())
	}
	if m.compressAbove != DefaultCompressAbove {
		t.Errorf("compressAbove = %d, want %d", m.compressAbove, DefaultCompressAbove)
	}
}

func TestManager_SaveLoad(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	content := []byte("# Draft\n")

	if err := m.Save("run-1", "draft.md", content); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load("run-1", "draft.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("Load() = %q, want %q", got, content)
	}
	if !m.Has("run-1", "draft.md") {
		t.Error("Has() = false after Save")
	}
}

func TestManager_Compression(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir(), CompressAbove: 100})
	content := []byte(strings.Repeat("a long scene. ", 50))

	if err := m.Save("run-1", "scene.md", content); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.Dir("run-1"), "scene.md.gz")); err != nil {
		t.Fatalf("compressed file missing: %v", err)
	}

	got, err := m.Load("run-1", "scene.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(content) {
		t.Error("decompressed content differs")
	}

	// Small rewrite replaces the compressed version
	if err := m.Save("run-1", "scene.md", []byte("short")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.Dir("run-1"), "scene.md.gz")); !os.IsNotExist(err) {
		t.Error("stale compressed file was not removed")
	}
}

func TestManager_ImagesNotCompressed(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir(), CompressAbove: 1})

	if err := m.Save("run-1", "poster.png", []byte("pixels")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	infos, err := m.List("run-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Compressed || infos[0].Type != "image" {
		t.Errorf("List() = %+v", infos)
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})

	if err := m.Delete("run-1", "missing.json"); err != ErrNotFound {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
	if _, err := m.Load("run-1", "missing.json"); err != ErrNotFound {
		t.Errorf("Load(missing) = %v, want ErrNotFound", err)
	}

	m.Save("run-1", "x.json", []byte("{}"))
	if err := m.Delete("run-1", "x.json"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if m.Has("run-1", "x.json") {
		t.Error("artifact still present after Delete")
	}
}

func TestManager_ListSorted(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	for _, name := range []string{"b.json", "a.md", "c.txt"} {
		if err := m.Save("run-1", name, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := m.List("run-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	if strings.Join(names, ",") != "a.md,b.json,c.txt" {
		t.Errorf("List() names = %v", names)
	}

	if infos, err := m.List("no-such-run"); err != nil || infos != nil {
		t.Errorf("List(no-such-run) = %v, %v", infos, err)
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"screenplay.md", "markdown"},
		{"STATE.JSON", "json"},
		{"frame.jpeg", "image"},
		{"notes", "unknown"},
	}
	for _, tt := range tests {
		if got := InferType(tt.name).Name; got != tt.want {
			t.Errorf("InferType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func completedState() story.State {
	plot := testutil.SamplePlot()
	theme := testutil.SampleTheme()
	sp := testutil.SampleScreenplay()
	market := testutil.SampleMarketAnalysis()

	s := story.NewState("a lighthouse keeper finds a door in the sea")
	s.Plot = &plot
	s.Characters = testutil.SampleCharacters()
	s.Theme = &theme
	s.Screenplay = &sp
	s.MarketAnalysis = &market
	s.DirectorNotes = []string{"first note", "tighten act two"}
	s.CriticFeedback = []string{"promising"}
	return s
}

func TestSaveStory(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	s := completedState()

	names, err := m.SaveStory(s)
	if err != nil {
		t.Fatalf("SaveStory: %v", err)
	}
	want := []string{NameState, NamePlot, NameCharacters, NameTheme, NameMarketAnalysis, NameScreenplay}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("SaveStory() = %v, want %v", names, want)
	}

	loaded, err := m.LoadState(s.RunID)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded.Concept != s.Concept || len(loaded.Characters) != len(s.Characters) {
		t.Errorf("LoadState() = %+v", loaded)
	}

	var plot story.Plot
	data, _ := m.Load(s.RunID, NamePlot)
	if err := json.Unmarshal(data, &plot); err != nil || plot.Premise != s.Plot.Premise {
		t.Errorf("plot.json = %s (%v)", data, err)
	}
}

func TestSaveStory_PartialState(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	s := story.NewState("concept only")

	names, err := m.SaveStory(s)
	if err != nil {
		t.Fatalf("SaveStory: %v", err)
	}
	if len(names) != 1 || names[0] != NameState {
		t.Errorf("SaveStory() = %v, want only state", names)
	}

	if _, err := m.SaveStory(story.State{}); err == nil {
		t.Error("SaveStory without run ID should fail")
	}
}

func TestRenderScreenplay(t *testing.T) {
	s := completedState()
	md := RenderScreenplay(s)

	for _, want := range []string{
		"# " + s.Concept,
		"## Cast",
		"**" + s.Characters[0].Name + "**",
		"## Act 1",
		"## Director's Notes\n\ntighten act two",
		"## Critic\n\npromising",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("RenderScreenplay() missing %q", want)
		}
	}
	if strings.Contains(md, "first note") {
		t.Error("RenderScreenplay() should show only the latest director note")
	}
}

func writeRun(t *testing.T, m *Manager, runID string, status transcript.RunStatus, endedAt time.Time) {
	t.Helper()
	dir := m.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(transcript.Meta{RunID: runID, Status: status, EndedAt: endedAt})
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(runID, NameState, []byte(`{"run_id":"`+runID+`"}`)); err != nil {
		t.Fatal(err)
	}
}

func TestCleanup(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	now := time.Now()
	writeRun(t, m, "2024-01-01-old", transcript.RunStatusCompleted, now.AddDate(0, 0, -60))
	writeRun(t, m, "2024-02-01-aging", transcript.RunStatusCompleted, now.AddDate(0, 0, -10))
	writeRun(t, m, "2024-02-02-failed", transcript.RunStatusFailed, now.AddDate(0, 0, -60))
	writeRun(t, m, "2024-02-03-waiting", transcript.RunStatusSuspended, now.AddDate(0, 0, -60))
	writeRun(t, m, "2024-03-01-fresh", transcript.RunStatusCompleted, now)

	policy := DefaultRetentionConfig()
	policy.KeepMinRuns = 0

	dry, err := m.Cleanup(policy, true)
	if err != nil {
		t.Fatalf("Cleanup(dry): %v", err)
	}
	if len(dry.Deleted) != 1 || !m.Has("2024-01-01-old", NameState) {
		t.Fatalf("dry run changed files or planned wrong deletes: %+v", dry)
	}

	res, err := m.Cleanup(policy, false)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if strings.Join(res.Deleted, ",") != "2024-01-01-old" {
		t.Errorf("Deleted = %v", res.Deleted)
	}
	if strings.Join(res.Archived, ",") != "2024-02-01-aging" {
		t.Errorf("Archived = %v", res.Archived)
	}
	if len(res.Kept) != 3 {
		t.Errorf("Kept = %v, want failed, suspended and fresh", res.Kept)
	}
	if _, err := os.Stat(m.ArchivePath("2024-02-01-aging")); err != nil {
		t.Errorf("archive missing: %v", err)
	}

	if err := m.Restore("2024-02-01-aging"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := m.Load("2024-02-01-aging", NameState)
	if err != nil || !strings.Contains(string(got), "aging") {
		t.Errorf("restored state = %s (%v)", got, err)
	}
}

func TestCleanup_KeepMinRuns(t *testing.T) {
	m := NewManager(Config{BaseDir: t.TempDir()})
	old := time.Now().AddDate(0, 0, -90)
	writeRun(t, m, "2024-01-01-a", transcript.RunStatusCompleted, old)
	writeRun(t, m, "2024-01-02-b", transcript.RunStatusCompleted, old.Add(time.Hour))

	policy := DefaultRetentionConfig()
	policy.KeepMinRuns = 1

	res, err := m.Cleanup(policy, false)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(res.Deleted) != 1 || len(res.Kept) != 1 {
		t.Errorf("Cleanup() = %+v, want one deleted and one kept", res)
	}
}
