package artifact

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/randalmurphal/storyflow/transcript"
)

// RetentionConfig defines the retention policy for run directories.
type RetentionConfig struct {
	RetentionDays    int  // Delete runs that ended this many days ago
	ArchiveAfterDays int  // Archive runs that ended this many days ago
	KeepFailed       bool // Never remove failed runs
	KeepMinRuns      int  // Keep at least this many runs regardless of age
}

// DefaultRetentionConfig returns the default policy.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RetentionDays:    30,
		ArchiveAfterDays: 7,
		KeepFailed:       true,
		KeepMinRuns:      20,
	}
}

// CleanupResult summarizes a cleanup pass.
type CleanupResult struct {
	Archived   []string `json:"archived"`
	Deleted    []string `json:"deleted"`
	Kept       []string `json:"kept"`
	Errors     []string `json:"errors,omitempty"`
	SpaceSaved int64    `json:"spaceSaved"`
}

// Cleanup applies policy to every run under the manager's base directory.
// Running and suspended runs are always kept. With dryRun nothing is
// changed.
func (m *Manager) Cleanup(policy RetentionConfig, dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{}

	runsDir := filepath.Join(m.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	type run struct {
		id   string
		meta transcript.Meta
		size int64
	}
	var runs []run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(runsDir, entry.Name())
		meta, err := readMeta(dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("load %s: %v", entry.Name(), err))
			continue
		}
		runs = append(runs, run{id: entry.Name(), meta: meta, size: dirSize(dir)})
	}

	// oldest first
	slices.SortFunc(runs, func(a, b run) int { return a.meta.EndedAt.Compare(b.meta.EndedAt) })

	now := time.Now()
	deleteBefore := now.AddDate(0, 0, -policy.RetentionDays)
	archiveBefore := now.AddDate(0, 0, -policy.ArchiveAfterDays)

	removed := 0
	for _, r := range runs {
		switch {
		case r.meta.Status == transcript.RunStatusRunning,
			r.meta.Status == transcript.RunStatusSuspended,
			policy.KeepFailed && r.meta.Status == transcript.RunStatusFailed,
			len(runs)-removed-1 < policy.KeepMinRuns:
			result.Kept = append(result.Kept, r.id)

		case r.meta.EndedAt.Before(deleteBefore):
			if !dryRun {
				if err := os.RemoveAll(m.RunDir(r.id)); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", r.id, err))
					continue
				}
			}
			result.Deleted = append(result.Deleted, r.id)
			result.SpaceSaved += r.size
			removed++

		case r.meta.EndedAt.Before(archiveBefore):
			if !dryRun {
				if err := m.archive(r.id); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("archive %s: %v", r.id, err))
					continue
				}
			}
			result.Archived = append(result.Archived, r.id)
			removed++

		default:
			result.Kept = append(result.Kept, r.id)
		}
	}

	return result, nil
}

// ArchivePath returns where a run is archived: archive/<yyyy-mm>/<id>.tar.gz.
func (m *Manager) ArchivePath(runID string) string {
	month := time.Now().Format("2006-01")
	if len(runID) >= 7 {
		// run IDs start with their date
		month = runID[:7]
	}
	return filepath.Join(m.baseDir, "archive", month, runID+".tar.gz")
}

// archive packs a run directory into a tarball and removes the directory.
func (m *Manager) archive(runID string) (err error) {
	runDir := m.RunDir(runID)
	path := m.ArchivePath(runID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	walkErr := filepath.Walk(runDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(runDir, p)
		header.Name = filepath.ToSlash(filepath.Join(runID, rel))
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		src, err := os.Open(p)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})

	for _, closeErr := range []error{walkErr, tw.Close(), gz.Close(), f.Close()} {
		if closeErr != nil {
			return closeErr
		}
	}
	return os.RemoveAll(runDir)
}

// Restore unpacks an archived run back into runs/.
func (m *Manager) Restore(runID string) error {
	path := m.ArchivePath(runID)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("archive not found: %s", runID)
	}
	if _, err := os.Stat(m.RunDir(runID)); err == nil {
		return fmt.Errorf("run already exists: %s", runID)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	destDir := filepath.Join(m.baseDir, "runs")
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(destDir, filepath.FromSlash(header.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("invalid path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readMeta(runDir string) (transcript.Meta, error) {
	var meta transcript.Meta
	data, err := os.ReadFile(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return meta, err
	}
	return meta, json.Unmarshal(data, &meta)
}

func dirSize(path string) int64 {
	var size int64
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
