package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/hupe1980/docflow/core"
)

// FileStore is a durable SessionStore keeping one pretty-printed JSON
// document per session under a data directory. Writes go to a temporary file
// in the same directory followed by a rename, so a crash mid-write never
// leaves a partially written record behind.
type FileStore struct {
	dataDir string
}

// NewFileStore constructs a FileStore rooted at dataDir. The directory is
// created lazily on the first write.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

// Path returns the record location for a session id.
func (s *FileStore) Path(sessionID string) string {
	return filepath.Join(s.dataDir, sessionID+".json")
}

// Get loads the session record from disk. A missing file reports absence; an
// unreadable or corrupt file is a PersistenceError.
func (s *FileStore) Get(_ context.Context, sessionID string) (*core.Session, bool, error) {
	data, err := os.ReadFile(s.Path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &core.PersistenceError{Op: "read", SessionID: sessionID, Err: err}
	}
	var sess core.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, false, &core.PersistenceError{Op: "parse", SessionID: sessionID, Err: err}
	}
	return &sess, true, nil
}

// Put writes the record atomically via a temp file and rename.
func (s *FileStore) Put(_ context.Context, session *core.Session) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return &core.PersistenceError{Op: "mkdir", SessionID: session.ID, Err: err}
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return &core.PersistenceError{Op: "encode", SessionID: session.ID, Err: err}
	}
	path := s.Path(session.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &core.PersistenceError{Op: "write", SessionID: session.ID, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &core.PersistenceError{Op: "rename", SessionID: session.ID, Err: err}
	}
	return nil
}

// Delete removes the record file. Missing files are a no-op.
func (s *FileStore) Delete(_ context.Context, sessionID string) error {
	if err := os.Remove(s.Path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &core.PersistenceError{Op: "delete", SessionID: sessionID, Err: err}
	}
	return nil
}
