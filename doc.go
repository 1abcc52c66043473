// Package songsync provides the core of a karaoke song library
// synchronizer: a parser, fixer and serializer for the line-oriented song
// text (.txt) notation format, and a versioned per-song sync-metadata model
// that tracks downloaded resources to decide between re-download and skip.
//
// Overview
//
// The sub-packages carry the functionality:
//
//   - txt: parse, validate, fix and serialize song text files
//   - meta: the per-song sidecar record of downloaded resources
//   - library: SQLite index of the local song library
//   - syncer: per-song download decisions against a Fetcher
//   - config: configuration management
//   - retry: exponential backoff retry logic
//
// Quick Start
//
// Parse and normalize a song text file:
//
//	song, err := txt.ParseBytes(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res := song.Fix()
//	fmt.Printf("fixed %d marks\n", res.FixedMarks)
//	os.WriteFile(path, []byte(song.String()), 0644)
//
// Decide whether a resource needs re-downloading:
//
//	record, err := meta.Load(sidecarPath)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if record.NeedsRedownload(meta.ResourceAudio, remoteMTime) {
//		// fetch and then record:
//		record.RecordResource(meta.ResourceAudio, folder, "song.mp3", sourceURL)
//	}
//
// Error Handling
//
// All operations return errors that implement standard Go error handling.
//
// Checking for sentinel errors:
//
//	if errors.Is(err, songsync.ErrMetaFileTooNew) {
//		fmt.Println("sidecar written by a newer version")
//	}
//
// Extracting wrapped error details:
//
//	var perr *songsync.ParseError
//	if errors.As(err, &perr) {
//		fmt.Printf("line %d: %v\n", perr.Line, perr.Err)
//	}
//
// Configuration
//
// songsync uses a configuration system that loads settings from multiple
// sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (songsync.json or ~/.config/songsync/songsync.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - SONGSYNC_SONG_DIR: Library root for song folders
//   - SONGSYNC_DATABASE_PATH: Path to the SQLite index
//   - SONGSYNC_FIX_TXT: Normalize downloaded txt files (true/false)
//   - SONGSYNC_MAX_RETRIES: Maximum retry attempts
//   - SONGSYNC_INITIAL_BACKOFF: Initial retry backoff duration
//   - SONGSYNC_MAX_BACKOFF: Maximum retry backoff duration
//
package songsync
