package artifact

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ErrNotFound is returned when a run has no artifact with the given name.
var ErrNotFound = errors.New("artifact not found")

// DefaultCompressAbove is the size from which text artifacts are gzipped.
const DefaultCompressAbove = 10 * 1024

// Config holds configuration for a Manager.
type Config struct {
	BaseDir       string // holds runs/<run-id>/artifacts; default ".storyflow/transcripts"
	CompressAbove int64
}

// Manager stores the exported outputs of story runs.
type Manager struct {
	baseDir       string
	compressAbove int64
}

// Info describes a stored artifact.
type Info struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"createdAt"`
	Type       string    `json:"type"`
}

// Type describes a kind of artifact.
type Type struct {
	Name         string
	Extensions   []string
	Compressible bool
}

// KnownTypes maps type names to their definitions.
var KnownTypes = map[string]Type{
	"markdown": {"markdown", []string{".md"}, true},
	"json":     {"json", []string{".json"}, true},
	"text":     {"text", []string{".txt", ".log"}, true},
	"image":    {"image", []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff"}, false},
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Join(".storyflow", "transcripts")
	}
	if cfg.CompressAbove == 0 {
		cfg.CompressAbove = DefaultCompressAbove
	}
	return &Manager{baseDir: cfg.BaseDir, compressAbove: cfg.CompressAbove}
}

// BaseDir returns the base directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// RunDir returns the directory of a run. It is shared with the run's
// transcript.
func (m *Manager) RunDir(runID string) string {
	return filepath.Join(m.baseDir, "runs", runID)
}

// Dir returns the artifacts directory of a run.
func (m *Manager) Dir(runID string) string {
	return filepath.Join(m.RunDir(runID), "artifacts")
}

// Save writes an artifact, gzipping compressible ones above the threshold.
// A previous version in the other encoding is removed.
func (m *Manager) Save(runID, name string, data []byte) error {
	path := filepath.Join(m.Dir(runID), name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if InferType(name).Compressible && int64(len(data)) >= m.compressAbove {
		os.Remove(path)
		return saveCompressed(path+".gz", data)
	}
	os.Remove(path + ".gz")
	return os.WriteFile(path, data, 0644)
}

// Load reads an artifact, decompressing it if needed.
func (m *Manager) Load(runID, name string) ([]byte, error) {
	path := filepath.Join(m.Dir(runID), name)

	if data, err := loadCompressed(path + ".gz"); err == nil {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Has reports whether the artifact exists in either encoding.
func (m *Manager) Has(runID, name string) bool {
	path := filepath.Join(m.Dir(runID), name)
	for _, p := range []string{path + ".gz", path} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// Delete removes an artifact.
func (m *Manager) Delete(runID, name string) error {
	path := filepath.Join(m.Dir(runID), name)
	gzErr := os.Remove(path + ".gz")
	err := os.Remove(path)
	if os.IsNotExist(err) && os.IsNotExist(gzErr) {
		return ErrNotFound
	}
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the artifacts of a run sorted by name.
func (m *Manager) List(runID string) ([]Info, error) {
	entries, err := os.ReadDir(m.Dir(runID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		name, compressed := strings.CutSuffix(entry.Name(), ".gz")
		infos = append(infos, Info{
			Name:       name,
			Size:       fi.Size(),
			Compressed: compressed,
			CreatedAt:  fi.ModTime(),
			Type:       InferType(name).Name,
		})
	}

	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// InferType infers the artifact type from a file name. Unknown extensions
// are treated as compressible text.
func InferType(name string) Type {
	ext := strings.ToLower(filepath.Ext(name))
	for _, t := range KnownTypes {
		if slices.Contains(t.Extensions, ext) {
			return t
		}
	}
	return Type{Name: "unknown", Compressible: true}
}

func saveCompressed(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		return err
	}
	return gz.Close()
}

func loadCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
