// Package syncer decides, per song and per resource, what needs to be
// re-downloaded and keeps the sidecar records and the library index
// consistent with what is on disk.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"songsync/library"
	"songsync/meta"
	"songsync/retry"
	"songsync/txt"
)

// Manager orchestrates song synchronization. It serializes work per song,
// satisfying the at-most-one-writer-per-sidecar requirement; the parse and
// fix pipeline itself is pure and needs no locking.
type Manager struct {
	fetcher Fetcher
	lib     *library.Library
	songDir string

	// fixTxt pipes downloaded txt files through parse -> fix -> serialize
	// before writing them.
	fixTxt   bool
	retryCfg retry.Config

	mu sync.Mutex // one song at a time
}

// Options tunes a Manager.
type Options struct {
	// SongDir is the library root all song folders live under.
	SongDir string
	// FixTxt enables the normalization pass on downloaded txt files.
	FixTxt bool
	// Retry overrides the retry configuration. Zero value means defaults.
	Retry retry.Config
}

// NewManager creates a sync manager.
func NewManager(fetcher Fetcher, lib *library.Library, opts Options) *Manager {
	cfg := opts.Retry
	if cfg.MaxRetries == 0 && cfg.InitialBackoff == 0 {
		cfg = retry.DefaultConfig()
	}
	return &Manager{
		fetcher:  fetcher,
		lib:      lib,
		songDir:  opts.SongDir,
		fixTxt:   opts.FixTxt,
		retryCfg: cfg,
	}
}

// Result is the outcome of syncing one song.
type Result struct {
	// Downloaded and Skipped count resources by decision.
	Downloaded int
	Skipped    int
	// FixedMarks is the number of marks the txt fix pass replaced.
	FixedMarks int
	// Folder is the song folder relative to the library root.
	Folder string
}

// BatchResult is the outcome of syncing many songs. One song's failure does
// not abort the batch.
type BatchResult struct {
	// Synced counts songs that completed.
	Synced int
	// Failed maps song ids to their errors.
	Failed map[string]error
}

// SyncSong brings one song's local state up to date with the remote
// description: resources whose recorded mtime is current are skipped,
// everything else is fetched (with retries), recorded in the sidecar and
// reflected in the library index.
func (m *Manager) SyncSong(ctx context.Context, remote RemoteSong) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	folder := m.songFolder(remote)
	absFolder := filepath.Join(m.songDir, folder)
	if err := os.MkdirAll(absFolder, 0755); err != nil {
		return nil, fmt.Errorf("create song folder: %w", err)
	}

	record, err := m.loadOrCreateMeta(remote, absFolder)
	if err != nil {
		return nil, err
	}

	res := &Result{Folder: folder}
	for _, resource := range remote.Resources {
		if !record.NeedsRedownload(resource.Kind, resource.MTime) && record.Resource(resource.Kind).Synced(absFolder) {
			res.Skipped++
			continue
		}
		fixed, err := m.downloadResource(ctx, record, absFolder, resource)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", resource.Kind, err)
		}
		res.Downloaded++
		res.FixedMarks += fixed
	}

	record.Touch(remote.TxtMTime)
	record.MetaTags = remote.MetaTags
	if err := record.Persist(absFolder); err != nil {
		return nil, err
	}

	err = m.lib.Upsert(ctx, &library.Song{
		SongID: remote.SongID,
		Artist: remote.Artist,
		Title:  remote.Title,
		Folder: folder,
		MTime:  remote.TxtMTime,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SyncAll syncs a batch of songs, logging and collecting per-song failures.
func (m *Manager) SyncAll(ctx context.Context, songs []RemoteSong) (*BatchResult, error) {
	batch := &BatchResult{Failed: make(map[string]error)}
	for _, song := range songs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if _, err := m.SyncSong(ctx, song); err != nil {
			log.Printf("songsync: sync %s failed: %v", song.SongID, err)
			batch.Failed[song.SongID] = err
			continue
		}
		batch.Synced++
	}
	return batch, nil
}

// DeleteSong removes a song's sidecar and library entry. The media files
// themselves are left for the caller to remove.
func (m *Manager) DeleteSong(ctx context.Context, songID, folder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	absFolder := filepath.Join(m.songDir, folder)
	record := &meta.SyncMeta{SongID: songID}
	if err := record.Delete(absFolder); err != nil {
		return err
	}
	err := m.lib.Delete(ctx, songID)
	if errors.Is(err, library.ErrNotFound) {
		return nil
	}
	return err
}

// loadOrCreateMeta loads the sidecar if one exists, starting fresh on
// anything unreadable except a version mismatch, which is surfaced.
func (m *Manager) loadOrCreateMeta(remote RemoteSong, absFolder string) (*meta.SyncMeta, error) {
	record := meta.New(remote.SongID, remote.TxtMTime, remote.MetaTags)
	loaded, err := meta.Load(record.Path(absFolder))
	switch {
	case err == nil:
		return loaded, nil
	case errors.Is(err, meta.ErrMetaFileTooNew):
		return nil, err
	case errors.Is(err, os.ErrNotExist):
		return record, nil
	default:
		log.Printf("songsync: replacing unreadable sidecar for %s: %v", remote.SongID, err)
		return record, nil
	}
}

// downloadResource fetches one resource with retries and records it in the
// sidecar. Txt content optionally goes through the fix pipeline; the count
// of fixed marks is returned.
func (m *Manager) downloadResource(ctx context.Context, record *meta.SyncMeta, absFolder string, resource ResourceInfo) (int, error) {
	var data []byte
	err := retry.Do(ctx, m.retryCfg, nil, func(ctx context.Context) error {
		var err error
		data, err = m.fetcher.Fetch(ctx, resource)
		return err
	})
	if err != nil {
		return 0, err
	}

	fixed := 0
	if resource.Kind == meta.ResourceTxt {
		data, fixed, err = m.processTxt(data)
		if err != nil {
			return 0, err
		}
	}

	path := filepath.Join(absFolder, resource.FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", resource.FileName, err)
	}
	if err := record.RecordResource(resource.Kind, absFolder, resource.FileName, resource.Resource); err != nil {
		return 0, err
	}
	return fixed, nil
}

// processTxt parses a downloaded txt and, when fixing is enabled, serializes
// the normalized form.
func (m *Manager) processTxt(data []byte) ([]byte, int, error) {
	song, err := txt.ParseBytes(data)
	if err != nil {
		return nil, 0, err
	}
	if !m.fixTxt {
		return data, 0, nil
	}
	res := song.Fix()
	return []byte(song.String()), res.FixedMarks, nil
}

// songFolder derives the on-disk folder name for a song.
func (m *Manager) songFolder(remote RemoteSong) string {
	name := fmt.Sprintf("%s - %s", remote.Artist, remote.Title)
	return sanitizeFolderName(name)
}

// sanitizeFolderName strips runes that are unsafe in file systems.
func sanitizeFolderName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 0x20 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
