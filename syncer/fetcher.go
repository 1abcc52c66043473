package syncer

import (
	"context"

	"songsync/meta"
)

// ResourceInfo describes one remote resource of a song.
type ResourceInfo struct {
	// Kind is the resource slot this fills.
	Kind meta.ResourceKind
	// Resource is the source identifier (URL or id).
	Resource string
	// MTime is the source's modification time in unix milliseconds.
	MTime int64
	// FileName is the file name to store the resource under, relative to
	// the song folder.
	FileName string
}

// RemoteSong is a song as advertised by the remote database.
type RemoteSong struct {
	// SongID identifies the song remotely.
	SongID string
	// Artist and Title are the display metadata.
	Artist string
	Title  string
	// TxtMTime is the remote txt modification time (unix milliseconds),
	// the freshness reference for the song as a whole.
	TxtMTime int64
	// MetaTags is the raw meta-tag string of the remote txt.
	MetaTags string
	// Resources lists the downloadable resources. The txt resource is
	// expected to be present.
	Resources []ResourceInfo
}

// Fetcher retrieves resource bytes from the remote source. Transport
// mechanics (HTTP details, authentication, throttling) live behind this
// interface and are not this package's concern.
type Fetcher interface {
	// Fetch returns the raw bytes of one resource.
	Fetch(ctx context.Context, res ResourceInfo) ([]byte, error)
}
