package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileExtension is the sidecar file suffix.
const FileExtension = ".songsync"

// Sentinel errors for sidecar handling.
var (
	// ErrMetaFileTooNew indicates the sidecar was written by a newer
	// schema version. No forward compatibility is attempted; the caller
	// must surface this to the user rather than guess at unknown fields.
	ErrMetaFileTooNew = errors.New("meta: file version newer than supported")
	// ErrMetaCorrupt indicates the sidecar could not be decoded.
	ErrMetaCorrupt = errors.New("meta: file corrupt")
	// ErrInvalidCustomKey indicates a rejected custom data key.
	ErrInvalidCustomKey = errors.New("meta: invalid custom data key")
)

// MetaError wraps sidecar errors with operation and path context.
type MetaError struct {
	// Op is the operation that failed ("load", "persist", "delete", ...).
	Op string
	// Path is the file or key involved.
	Path string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the error.
func (e *MetaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("meta: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("meta: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *MetaError) Unwrap() error { return e.Err }

// Path returns the sidecar path for the record inside folder.
func (m *SyncMeta) Path(folder string) string {
	return filepath.Join(folder, m.SongID+FileExtension)
}

// Persist writes the record to its sidecar file in folder, atomically.
func (m *SyncMeta) Persist(folder string) error {
	m.Version = SchemaVersion
	path := m.Path(folder)

	writer, err := newAtomicWriter(path)
	if err != nil {
		return &MetaError{Op: "persist", Path: path, Err: err}
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		writer.Abort()
		return &MetaError{Op: "persist", Path: path, Err: err}
	}
	if err := writer.Commit(); err != nil {
		return &MetaError{Op: "persist", Path: path, Err: err}
	}
	return nil
}

// Load reads a sidecar file. It fails with ErrMetaFileTooNew for files
// written by a newer schema and with ErrMetaCorrupt for undecodable content.
func Load(path string) (*SyncMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MetaError{Op: "load", Path: path, Err: err}
	}

	// Probe the version before decoding the full record, so a future
	// incompatible layout still reports the version mismatch and not a
	// generic decode failure.
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &MetaError{Op: "load", Path: path, Err: ErrMetaCorrupt}
	}
	if probe.Version > SchemaVersion {
		return nil, &MetaError{Op: "load", Path: path, Err: ErrMetaFileTooNew}
	}

	m := &SyncMeta{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, &MetaError{Op: "load", Path: path, Err: ErrMetaCorrupt}
	}
	return m, nil
}

// Delete removes the sidecar file from folder. Deleting a record that was
// never persisted is not an error.
func (m *SyncMeta) Delete(folder string) error {
	err := os.Remove(m.Path(folder))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &MetaError{Op: "delete", Path: m.Path(folder), Err: err}
	}
	return nil
}
