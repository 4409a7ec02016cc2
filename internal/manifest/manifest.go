package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/resortgen/internal/utils"
	"github.com/google/uuid"
)

// Artifact kinds.
const (
	KindRaw      = "raw"
	KindClean    = "clean"
	KindFlags    = "flags"
	KindWorkbook = "workbook"
)

// Artifact is one file produced by a run.
type Artifact struct {
	Domain string `json:"domain"`
	Kind   string `json:"kind"`
	Path   string `json:"path"` // relative to the run root
	Rows   int    `json:"rows"`
}

// DomainStats carries the remediation counts of one domain.
type DomainStats struct {
	GroundTruth int `json:"ground_truth"`
	Raw         int `json:"raw"`
	Clean       int `json:"clean"`
	Flagged     int `json:"flagged"`
	Duplicates  int `json:"duplicates"`
	Negatives   int `json:"negatives"`
	Gaps        int `json:"gaps"`
}

// Manifest records a generation run persisted as manifest.json.
type Manifest struct {
	RunID     string                 `json:"run_id"`
	Seed      uint64                 `json:"seed"`
	Domains   map[string]DomainStats `json:"domains"`
	Artifacts []Artifact             `json:"artifacts"`
	CreatedAt time.Time              `json:"created_at"`

	// Not serialized: run root directory
	rootDir string `json:"-"`
}

// New constructs an in-memory manifest with a fresh run id. Call Save() to persist.
func New(rootDir string, seed uint64) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Seed:      seed,
		Domains:   make(map[string]DomainStats),
		CreatedAt: time.Now().UTC(),
		rootDir:   rootDir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, utils.ManifestName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the run directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// Add records an artifact; paths under the root are made relative to it.
func (m *Manifest) Add(a Artifact) {
	if filepath.IsAbs(a.Path) == filepath.IsAbs(m.rootDir) {
		if rel, err := filepath.Rel(m.rootDir, a.Path); err == nil && !strings.HasPrefix(rel, "..") {
			a.Path = rel
		}
	}
	m.Artifacts = append(m.Artifacts, a)
}

// Sorted returns artifacts ordered by domain then path.
func (m *Manifest) Sorted() []Artifact {
	out := append([]Artifact(nil), m.Artifacts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return err
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, utils.ManifestName), data)
}
