// Package runstore persists run artifacts: one exclusively-owned directory
// per run, holding the fully resolved mapping for replay plus the run log.
// It replaces ambient process-wide output-directory state with an explicit
// collaborator that is initialized once at startup and handed to whoever
// needs it.
package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/strataconf/strata/internal/resolve"
)

// resolvedFile is the artifact name for the persisted resolved mapping.
const resolvedFile = "resolved.yaml"

// Store creates and owns run directories under a single root.
type Store struct {
	root string
}

// New opens a store rooted at dir, creating it when absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run root %s: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Run is one run's exclusively-owned artifact directory. No other run or
// process may write under Dir for the run's lifetime.
type Run struct {
	// ID uniquely identifies the run.
	ID string

	// Name is the caller-supplied label, such as a sweep-point summary.
	Name string

	// Dir is the run's directory.
	Dir string
}

// Begin allocates a fresh run directory named
// <root>/<yyyy-mm-dd>/<hhmmss>-<shortid>. The directory is created with
// os.Mkdir so a collision with an existing run fails instead of sharing;
// on collision a new ID is drawn.
func (s *Store) Begin(name string) (*Run, error) {
	now := time.Now()
	day := filepath.Join(s.root, now.Format("2006-01-02"))
	if err := os.MkdirAll(day, 0o755); err != nil {
		return nil, fmt.Errorf("create day directory: %w", err)
	}

	for attempt := 0; attempt < 5; attempt++ {
		id := uuid.NewString()[:8]
		dir := filepath.Join(day, fmt.Sprintf("%s-%s", now.Format("150405"), id))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return &Run{ID: id, Name: name, Dir: dir}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create run directory: %w", err)
		}
	}
	return nil, fmt.Errorf("could not allocate a unique run directory under %s", day)
}

// SaveResolved writes the resolved mapping as YAML into the run directory.
// The artifact is the replay contract: re-ingesting it as the sole
// highest-priority override set reproduces the run's configuration.
func (r *Run) SaveResolved(m resolve.Mapping) error {
	data, err := yaml.Marshal(map[string]any(m))
	if err != nil {
		return fmt.Errorf("marshal resolved mapping: %w", err)
	}
	path := filepath.Join(r.Dir, resolvedFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LogPath returns the run's log file path inside its directory.
func (r *Run) LogPath() string {
	return filepath.Join(r.Dir, "run.log")
}

// LoadResolved re-ingests a run directory's persisted mapping as a
// replay-priority override set, outranking every other source.
func LoadResolved(dir string) (resolve.Set, error) {
	set, err := resolve.FromYAMLFile(filepath.Join(dir, resolvedFile))
	if err != nil {
		return resolve.Set{}, fmt.Errorf("load run artifact: %w", err)
	}
	set.Source = resolve.SourceReplay
	set.Name = dir
	return set, nil
}
