// Package meta implements the versioned per-song sync metadata record.
//
// A SyncMeta tracks which resources of a song (txt, audio, video, cover,
// background) have been downloaded, where they came from and when the source
// was last modified, so the sync layer can decide between re-download and
// skip. It is persisted as a JSON sidecar file in the song's folder.
//
// Callers must serialize writes per song folder; concurrent writers to the
// same sidecar are not supported.
package meta

import (
	"os"
	"path/filepath"
	"strings"
)

// SchemaVersion is the sidecar schema version this package reads and writes.
// Files with a newer version fail to load with ErrMetaFileTooNew.
const SchemaVersion = 1

// ResourceKind identifies one of the per-song resources.
type ResourceKind string

const (
	ResourceTxt        ResourceKind = "txt"
	ResourceAudio      ResourceKind = "audio"
	ResourceVideo      ResourceKind = "video"
	ResourceCover      ResourceKind = "cover"
	ResourceBackground ResourceKind = "background"
)

// ResourceKinds returns all resource kinds in a fixed order.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{ResourceTxt, ResourceAudio, ResourceVideo, ResourceCover, ResourceBackground}
}

// ResourceFile records one locally downloaded resource.
type ResourceFile struct {
	// FileName is the file name relative to the song folder.
	FileName string `json:"fname"`
	// MTime is the file's modification time in unix milliseconds, taken
	// when the resource was recorded.
	MTime int64 `json:"mtime"`
	// Resource is the source identifier (URL or id) the file came from.
	Resource string `json:"resource"`
}

// Synced reports whether the local file still exists and has the recorded
// modification time. A moved or edited file is out of sync.
func (r *ResourceFile) Synced(folder string) bool {
	if r == nil {
		return false
	}
	info, err := os.Stat(filepath.Join(folder, r.FileName))
	if err != nil {
		return false
	}
	return info.ModTime().UnixMilli() == r.MTime
}

// SyncMeta is the per-song sync record.
type SyncMeta struct {
	// Version is the schema version the record was written with.
	Version int `json:"version"`
	// SongID identifies the song on the remote database.
	SongID string `json:"song_id"`
	// MTime is the remote txt modification time (unix milliseconds) at
	// the last successful sync.
	MTime int64 `json:"mtime"`
	// Pinned marks a song as exempt from automatic updates.
	Pinned bool `json:"pinned"`
	// MetaTags is the raw meta-tag string of the remote txt at the last
	// sync, kept for change detection.
	MetaTags string `json:"meta_tags,omitempty"`

	Txt        *ResourceFile `json:"txt,omitempty"`
	Audio      *ResourceFile `json:"audio,omitempty"`
	Video      *ResourceFile `json:"video,omitempty"`
	Cover      *ResourceFile `json:"cover,omitempty"`
	Background *ResourceFile `json:"background,omitempty"`

	// CustomData is a free-form user annotation mapping.
	CustomData map[string]string `json:"custom_data,omitempty"`
}

// New creates an empty record for a song.
func New(songID string, remoteMTime int64, metaTags string) *SyncMeta {
	return &SyncMeta{
		Version:  SchemaVersion,
		SongID:   songID,
		MTime:    remoteMTime,
		MetaTags: metaTags,
	}
}

// Resource returns the record for the given kind, or nil.
func (m *SyncMeta) Resource(kind ResourceKind) *ResourceFile {
	switch kind {
	case ResourceTxt:
		return m.Txt
	case ResourceAudio:
		return m.Audio
	case ResourceVideo:
		return m.Video
	case ResourceCover:
		return m.Cover
	case ResourceBackground:
		return m.Background
	}
	return nil
}

func (m *SyncMeta) setResource(kind ResourceKind, r *ResourceFile) {
	switch kind {
	case ResourceTxt:
		m.Txt = r
	case ResourceAudio:
		m.Audio = r
	case ResourceVideo:
		m.Video = r
	case ResourceCover:
		m.Cover = r
	case ResourceBackground:
		m.Background = r
	}
}

// RecordResource upserts the resource record for kind with the modification
// time of the just-written local file.
func (m *SyncMeta) RecordResource(kind ResourceKind, folder, fileName, resource string) error {
	info, err := os.Stat(filepath.Join(folder, fileName))
	if err != nil {
		return &MetaError{Op: "record", Path: filepath.Join(folder, fileName), Err: err}
	}
	m.setResource(kind, &ResourceFile{
		FileName: fileName,
		MTime:    info.ModTime().UnixMilli(),
		Resource: resource,
	})
	return nil
}

// NeedsRedownload reports whether the resource must be fetched again: there
// is no record for the kind, or the recorded time predates the source's
// current modification time.
func (m *SyncMeta) NeedsRedownload(kind ResourceKind, remoteMTime int64) bool {
	r := m.Resource(kind)
	if r == nil {
		return true
	}
	return r.MTime < remoteMTime
}

// Touch updates the remote txt modification time after a successful sync.
func (m *SyncMeta) Touch(remoteMTime int64) { m.MTime = remoteMTime }

// forbiddenKeyRunes are runes that are unsafe in file systems and therefore
// not allowed in custom data keys.
const forbiddenKeyRunes = `/\:*?"<>|`

// ValidCustomKey reports whether key may be used in CustomData: non-empty,
// no leading or trailing whitespace, no filesystem-unsafe runes.
func ValidCustomKey(key string) bool {
	if key == "" || strings.TrimSpace(key) != key {
		return false
	}
	return !strings.ContainsAny(key, forbiddenKeyRunes)
}

// SetCustomData stores a user annotation. It fails with ErrInvalidCustomKey
// for keys ValidCustomKey rejects.
func (m *SyncMeta) SetCustomData(key, value string) error {
	if !ValidCustomKey(key) {
		return &MetaError{Op: "set custom data", Err: ErrInvalidCustomKey, Path: key}
	}
	if m.CustomData == nil {
		m.CustomData = make(map[string]string)
	}
	m.CustomData[key] = value
	return nil
}
