// Package library maintains the local song library index in a SQLite
// database. The index is a fast lookup over what is downloaded where; the
// per-song sidecar files remain the source of truth for resource provenance.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Sentinel errors for library lookups.
var (
	// ErrNotFound indicates the song is not in the library.
	ErrNotFound = errors.New("library: song not found")
)

// LibraryError wraps library errors with operation and song context.
type LibraryError struct {
	// Op is the operation that failed ("open", "upsert", "get", ...).
	Op string
	// SongID is the remote song id if applicable.
	SongID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the library error.
func (e *LibraryError) Error() string {
	if e.SongID != "" {
		return fmt.Sprintf("library: %s %s: %v", e.Op, e.SongID, e.Err)
	}
	return fmt.Sprintf("library: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *LibraryError) Unwrap() error { return e.Err }

// Song is one indexed library entry.
type Song struct {
	// ID is the internal unique identifier (UUID).
	ID string
	// SongID is the song's id on the remote database.
	SongID string
	// Artist and Title mirror the txt headers at the last sync.
	Artist string
	Title  string
	// Folder is the song folder relative to the library root.
	Folder string
	// MTime is the remote txt modification time (unix milliseconds) at
	// the last sync.
	MTime int64
	// Pinned marks the song as exempt from automatic updates.
	Pinned bool
}

// Library is the SQLite-backed index. It is safe for concurrent use; the
// database serializes access.
type Library struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	id TEXT PRIMARY KEY,
	song_id TEXT UNIQUE NOT NULL,
	artist TEXT NOT NULL,
	title TEXT NOT NULL,
	folder TEXT NOT NULL,
	mtime INTEGER NOT NULL,
	pinned INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_songs_artist_title ON songs(artist, title);
`

// Open opens (creating if necessary) the library database at path.
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &LibraryError{Op: "open", Err: err}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &LibraryError{Op: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &LibraryError{Op: "open", Err: err}
	}
	return &Library{db: db}, nil
}

// Close releases the database handle.
func (l *Library) Close() error { return l.db.Close() }

// Upsert inserts or updates a song keyed by its remote id. A missing
// internal ID is assigned.
func (l *Library) Upsert(ctx context.Context, song *Song) error {
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO songs (id, song_id, artist, title, folder, mtime, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(song_id) DO UPDATE SET
			artist = excluded.artist,
			title = excluded.title,
			folder = excluded.folder,
			mtime = excluded.mtime,
			pinned = excluded.pinned`,
		song.ID, song.SongID, song.Artist, song.Title, song.Folder, song.MTime, boolToInt(song.Pinned))
	if err != nil {
		return &LibraryError{Op: "upsert", SongID: song.SongID, Err: err}
	}
	return nil
}

// Get retrieves a song by its remote id.
func (l *Library) Get(ctx context.Context, songID string) (*Song, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, song_id, artist, title, folder, mtime, pinned
		FROM songs WHERE song_id = ?`, songID)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &LibraryError{Op: "get", SongID: songID, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &LibraryError{Op: "get", SongID: songID, Err: err}
	}
	return song, nil
}

// Delete removes a song from the index.
func (l *Library) Delete(ctx context.Context, songID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM songs WHERE song_id = ?`, songID)
	if err != nil {
		return &LibraryError{Op: "delete", SongID: songID, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &LibraryError{Op: "delete", SongID: songID, Err: ErrNotFound}
	}
	return nil
}

// List returns all indexed songs ordered by artist, then title.
func (l *Library) List(ctx context.Context) ([]*Song, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, song_id, artist, title, folder, mtime, pinned
		FROM songs ORDER BY artist, title`)
	if err != nil {
		return nil, &LibraryError{Op: "list", Err: err}
	}
	defer rows.Close()

	var songs []*Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, &LibraryError{Op: "list", Err: err}
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, &LibraryError{Op: "list", Err: err}
	}
	return songs, nil
}

// ListOutdated returns indexed, unpinned songs whose stored remote mtime is
// older than the mtime in the given remote snapshot.
func (l *Library) ListOutdated(ctx context.Context, remote map[string]int64) ([]*Song, error) {
	songs, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	var outdated []*Song
	for _, song := range songs {
		if song.Pinned {
			continue
		}
		if mtime, ok := remote[song.SongID]; ok && song.MTime < mtime {
			outdated = append(outdated, song)
		}
	}
	return outdated, nil
}

// scanner is the shared subset of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSong(s scanner) (*Song, error) {
	song := &Song{}
	var pinned int
	if err := s.Scan(&song.ID, &song.SongID, &song.Artist, &song.Title, &song.Folder, &song.MTime, &pinned); err != nil {
		return nil, err
	}
	song.Pinned = pinned != 0
	return song, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
