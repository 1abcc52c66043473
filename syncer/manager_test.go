package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"songsync/library"
	"songsync/meta"
	"songsync/retry"
	"songsync/txt"
)

const (
	rawTxt   = "#TITLE:Title\n#ARTIST:Artist\n#BPM:100\n: 0 2 5 ''Hi''\nE\n"
	fixedTxt = "#TITLE:Title\n#ARTIST:Artist\n#BPM:200\n: 0 4 5 “Hi”\nE\n"
)

// fakeFetcher serves resource bytes from memory and counts fetches.
type fakeFetcher struct {
	mu      sync.Mutex
	data    map[string][]byte
	fails   map[string]error
	fetched int
}

func (f *fakeFetcher) Fetch(ctx context.Context, res ResourceInfo) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched++
	if err, ok := f.fails[res.Resource]; ok {
		return nil, err
	}
	data, ok := f.data[res.Resource]
	if !ok {
		return nil, retry.ErrSongNotFound
	}
	return data, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched
}

// fastRetry keeps test retries from sleeping for real.
func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func newTestManager(t *testing.T, fetcher Fetcher, fixTxt bool) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "library.db"))
	if err != nil {
		t.Fatalf("library.Open() returned error = %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	songDir := filepath.Join(dir, "songs")
	m := NewManager(fetcher, lib, Options{SongDir: songDir, FixTxt: fixTxt, Retry: fastRetry()})
	return m, songDir
}

func testRemoteSong(mtime int64) RemoteSong {
	return RemoteSong{
		SongID:   "123",
		Artist:   "Artist",
		Title:    "Title",
		TxtMTime: mtime,
		MetaTags: "v=abc",
		Resources: []ResourceInfo{
			{Kind: meta.ResourceTxt, Resource: "123", MTime: mtime, FileName: "Artist - Title.txt"},
			{Kind: meta.ResourceAudio, Resource: "https://example.com/a", MTime: mtime, FileName: "Artist - Title.mp3"},
		},
	}
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string][]byte{
		"123":                   []byte(rawTxt),
		"https://example.com/a": []byte("audio bytes"),
	}}
}

func TestSyncSong_DownloadsAndRecords(t *testing.T) {
	fetcher := testFetcher()
	m, songDir := newTestManager(t, fetcher, true)
	remote := testRemoteSong(1000)

	res, err := m.SyncSong(context.Background(), remote)
	if err != nil {
		t.Fatalf("SyncSong() returned error = %v, want nil", err)
	}
	if res.Downloaded != 2 || res.Skipped != 0 {
		t.Errorf("Result = %+v, want 2 downloaded, 0 skipped", res)
	}
	if res.FixedMarks != 2 {
		t.Errorf("FixedMarks = %d, want 2", res.FixedMarks)
	}
	if res.Folder != "Artist - Title" {
		t.Errorf("Folder = %q, want %q", res.Folder, "Artist - Title")
	}

	folder := filepath.Join(songDir, res.Folder)
	got, err := os.ReadFile(filepath.Join(folder, "Artist - Title.txt"))
	if err != nil {
		t.Fatalf("ReadFile(txt) returned error = %v", err)
	}
	if string(got) != fixedTxt {
		t.Errorf("downloaded txt = %q, want fixed form %q", got, fixedTxt)
	}
	if _, err := os.Stat(filepath.Join(folder, "Artist - Title.mp3")); err != nil {
		t.Errorf("audio file missing: %v", err)
	}

	record, err := meta.Load(filepath.Join(folder, "123"+meta.FileExtension))
	if err != nil {
		t.Fatalf("meta.Load() returned error = %v", err)
	}
	if record.SongID != "123" || record.MTime != 1000 || record.MetaTags != "v=abc" {
		t.Errorf("sidecar = %+v, want song id 123, mtime 1000, tags v=abc", record)
	}
	if record.Txt == nil || record.Txt.Resource != "123" {
		t.Errorf("sidecar txt record = %+v, want resource 123", record.Txt)
	}
	if record.Audio == nil || !record.Audio.Synced(folder) {
		t.Errorf("sidecar audio record = %+v, want synced", record.Audio)
	}

	song, err := m.lib.Get(context.Background(), "123")
	if err != nil {
		t.Fatalf("library Get() returned error = %v", err)
	}
	if song.Folder != res.Folder || song.MTime != 1000 {
		t.Errorf("library entry = %+v, want folder %q mtime 1000", song, res.Folder)
	}
}

func TestSyncSong_SecondRunSkips(t *testing.T) {
	fetcher := testFetcher()
	m, _ := newTestManager(t, fetcher, true)
	remote := testRemoteSong(1000)
	ctx := context.Background()

	if _, err := m.SyncSong(ctx, remote); err != nil {
		t.Fatalf("first SyncSong() returned error = %v", err)
	}
	fetches := fetcher.fetchCount()

	res, err := m.SyncSong(ctx, remote)
	if err != nil {
		t.Fatalf("second SyncSong() returned error = %v", err)
	}
	if res.Downloaded != 0 || res.Skipped != 2 {
		t.Errorf("second Result = %+v, want 0 downloaded, 2 skipped", res)
	}
	if got := fetcher.fetchCount(); got != fetches {
		t.Errorf("fetch count = %d after second sync, want unchanged %d", got, fetches)
	}
}

func TestSyncSong_RemoteUpdateRedownloads(t *testing.T) {
	fetcher := testFetcher()
	m, _ := newTestManager(t, fetcher, true)
	ctx := context.Background()

	if _, err := m.SyncSong(ctx, testRemoteSong(1000)); err != nil {
		t.Fatalf("first SyncSong() returned error = %v", err)
	}

	// The remote moves ahead of everything recorded locally.
	updated := testRemoteSong(time.Now().Add(time.Hour).UnixMilli())
	res, err := m.SyncSong(ctx, updated)
	if err != nil {
		t.Fatalf("second SyncSong() returned error = %v", err)
	}
	if res.Downloaded != 2 {
		t.Errorf("Result = %+v, want 2 downloaded after remote update", res)
	}
}

func TestSyncSong_FixDisabled(t *testing.T) {
	fetcher := testFetcher()
	m, songDir := newTestManager(t, fetcher, false)

	res, err := m.SyncSong(context.Background(), testRemoteSong(1000))
	if err != nil {
		t.Fatalf("SyncSong() returned error = %v, want nil", err)
	}
	if res.FixedMarks != 0 {
		t.Errorf("FixedMarks = %d, want 0 with fixing disabled", res.FixedMarks)
	}
	got, err := os.ReadFile(filepath.Join(songDir, res.Folder, "Artist - Title.txt"))
	if err != nil {
		t.Fatalf("ReadFile(txt) returned error = %v", err)
	}
	if string(got) != rawTxt {
		t.Errorf("downloaded txt = %q, want raw form %q", got, rawTxt)
	}
}

func TestSyncSong_InvalidTxtFails(t *testing.T) {
	fetcher := testFetcher()
	fetcher.data["123"] = []byte("#TITLE:broken\nE\n")
	m, _ := newTestManager(t, fetcher, true)

	_, err := m.SyncSong(context.Background(), testRemoteSong(1000))
	if !errors.Is(err, txt.ErrParse) {
		t.Errorf("SyncSong() returned error = %v, want wrapped txt.ErrParse", err)
	}
}

func TestSyncSong_TooNewSidecarSurfaced(t *testing.T) {
	fetcher := testFetcher()
	m, songDir := newTestManager(t, fetcher, true)

	folder := filepath.Join(songDir, "Artist - Title")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatalf("MkdirAll() returned error = %v", err)
	}
	sidecar := filepath.Join(folder, "123"+meta.FileExtension)
	if err := os.WriteFile(sidecar, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatalf("WriteFile() returned error = %v", err)
	}

	_, err := m.SyncSong(context.Background(), testRemoteSong(1000))
	if !errors.Is(err, meta.ErrMetaFileTooNew) {
		t.Errorf("SyncSong() returned error = %v, want ErrMetaFileTooNew", err)
	}
}

func TestSyncAll_ContinuesPastFailure(t *testing.T) {
	fetcher := testFetcher()
	fetcher.fails = map[string]error{"456": retry.ErrSongNotFound}
	m, _ := newTestManager(t, fetcher, true)

	bad := testRemoteSong(1000)
	bad.SongID = "456"
	bad.Title = "Gone"
	bad.Resources = []ResourceInfo{
		{Kind: meta.ResourceTxt, Resource: "456", MTime: 1000, FileName: "Artist - Gone.txt"},
	}

	batch, err := m.SyncAll(context.Background(), []RemoteSong{bad, testRemoteSong(1000)})
	if err != nil {
		t.Fatalf("SyncAll() returned error = %v, want nil", err)
	}
	if batch.Synced != 1 {
		t.Errorf("Synced = %d, want 1", batch.Synced)
	}
	if len(batch.Failed) != 1 || !errors.Is(batch.Failed["456"], retry.ErrSongNotFound) {
		t.Errorf("Failed = %v, want song 456 with its fetch error", batch.Failed)
	}
}

func TestSyncAll_StopsOnCanceledContext(t *testing.T) {
	m, _ := newTestManager(t, testFetcher(), true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := m.SyncAll(ctx, []RemoteSong{testRemoteSong(1000)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SyncAll() returned error = %v, want context.Canceled", err)
	}
	if batch.Synced != 0 {
		t.Errorf("Synced = %d, want 0", batch.Synced)
	}
}

func TestDeleteSong(t *testing.T) {
	m, songDir := newTestManager(t, testFetcher(), true)
	ctx := context.Background()

	res, err := m.SyncSong(ctx, testRemoteSong(1000))
	if err != nil {
		t.Fatalf("SyncSong() returned error = %v", err)
	}

	if err := m.DeleteSong(ctx, "123", res.Folder); err != nil {
		t.Fatalf("DeleteSong() returned error = %v, want nil", err)
	}
	sidecar := filepath.Join(songDir, res.Folder, "123"+meta.FileExtension)
	if _, err := os.Stat(sidecar); !errors.Is(err, os.ErrNotExist) {
		t.Error("sidecar still exists after DeleteSong()")
	}
	if _, err := m.lib.Get(ctx, "123"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("library Get() returned error = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error.
	if err := m.DeleteSong(ctx, "123", res.Folder); err != nil {
		t.Errorf("second DeleteSong() returned error = %v, want nil", err)
	}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Artist - Title", "Artist - Title"},
		{`AC/DC - T.N.T.`, "ACDC - T.N.T."},
		{`What? - "Quoted" <Title>`, "What - Quoted Title"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := sanitizeFolderName(tt.in); got != tt.want {
			t.Errorf("sanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
