package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/docflow/core"
)

// Stage names the pipeline stage an artifact directory belongs to.
type Stage string

const (
	StageEngagement Stage = "engagement"
	StageEnrichment Stage = "enrichment"
	StageSynthesis  Stage = "synthesis"
)

// Artifact file names shared between the controller and the local providers.
const (
	SpecFile       = "spec.json"
	ManifestFile   = "tables_manifest.json"
	MappingsFile   = "mappings.json"
	TranscriptFile = "transcript.json"
)

// Layout maps session ids to their artifact directories under a common root.
// It only composes and manages paths; file contents are read and written by
// the JSON helpers below and by the providers themselves.
type Layout struct {
	root string
}

// NewLayout constructs a Layout rooted at root. Directories are created
// lazily via EnsureStageDir.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the layout's root directory.
func (l *Layout) Root() string {
	return l.root
}

// SessionDir returns the directory holding every artifact of a session.
func (l *Layout) SessionDir(sessionID string) string {
	return filepath.Join(l.root, sessionID)
}

// StageDir returns the per-stage directory of a session.
func (l *Layout) StageDir(sessionID string, stage Stage) string {
	return filepath.Join(l.root, sessionID, string(stage))
}

// EnsureStageDir creates the per-stage directory if needed and returns it.
func (l *Layout) EnsureStageDir(sessionID string, stage Stage) (string, error) {
	dir := l.StageDir(sessionID, stage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir %s: %w", dir, err)
	}
	return dir, nil
}

// Remove deletes every artifact of a session. Unknown sessions are a no-op.
func (l *Layout) Remove(sessionID string) error {
	if err := os.RemoveAll(l.SessionDir(sessionID)); err != nil {
		return fmt.Errorf("failed to remove artifacts for session %s: %w", sessionID, err)
	}
	return nil
}

// WriteJSON writes v to path as pretty-printed JSON via a temp file and
// rename, mirroring the durability behavior of the session file store.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON loads a JSON object from path. A missing file reports ErrNotFound.
func ReadJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// WriteSpec stores the requirement spec in dir as spec.json.
func WriteSpec(dir string, spec map[string]any) error {
	return WriteJSON(filepath.Join(dir, SpecFile), spec)
}

// LoadSpec loads the requirement spec from dir.
func LoadSpec(dir string) (map[string]any, error) {
	return ReadJSON(filepath.Join(dir, SpecFile))
}

// LoadManifest loads the table manifest from dir.
func LoadManifest(dir string) (map[string]any, error) {
	return ReadJSON(filepath.Join(dir, ManifestFile))
}

// LoadMappings loads the field mappings from dir.
func LoadMappings(dir string) (map[string]any, error) {
	return ReadJSON(filepath.Join(dir, MappingsFile))
}

// WriteTranscript stores a conversation transcript in dir as transcript.json.
func WriteTranscript(dir string, transcript []core.Message) error {
	return WriteJSON(filepath.Join(dir, TranscriptFile), transcript)
}
