package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"autoplay/internal/logging"
	"autoplay/internal/state"
)

func setupTestDB(t testing.TB, opts *Options) (*Database, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "state.db")
	if opts == nil {
		opts = &Options{}
	}
	opts.Logger = logging.Discard

	db, err := New(context.Background(), dbPath, opts)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, dbPath
}

func TestReadEmpty(t *testing.T) {
	db, _ := setupTestDB(t, nil)

	_, err := db.Read(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() error = %v, want fs.ErrNotExist", err)
	}
}

func TestWriteAndRead(t *testing.T) {
	db, _ := setupTestDB(t, nil)
	ctx := context.Background()

	for _, doc := range []string{`{"version":1}`, `{"version":1,"mixer":{"volume":5}}`} {
		if err := db.Write(ctx, []byte(doc)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		got, err := db.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(got) != doc {
			t.Errorf("Read() = %s, want %s", got, doc)
		}
	}
}

func TestHistory(t *testing.T) {
	db, _ := setupTestDB(t, &Options{HistoryLimit: 2})
	ctx := context.Background()

	for _, doc := range []string{"a", "b", "c", "d"} {
		if err := db.Write(ctx, []byte(doc)); err != nil {
			t.Fatalf("Write(%s) error = %v", doc, err)
		}
	}

	entries, err := db.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, string(e.Document))
	}
	// "d" is current; "a" was pruned.
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Errorf("History() = %v, want [c b]", got)
	}

	entries, err = db.History(ctx, 1)
	if err != nil || len(entries) != 1 || string(entries[0].Document) != "c" {
		t.Errorf("History(1) = %v, %v", entries, err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	db, _ := setupTestDB(t, &Options{HistoryLimit: -1})
	ctx := context.Background()

	for _, doc := range []string{"a", "b"} {
		if err := db.Write(ctx, []byte(doc)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	entries, err := db.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("History() returned %d entries, want 0", len(entries))
	}
}

func TestReset(t *testing.T) {
	db, _ := setupTestDB(t, nil)
	ctx := context.Background()

	if last, err := db.GetLastReset(ctx); err != nil || !last.IsZero() {
		t.Errorf("GetLastReset() before reset = %v, %v", last, err)
	}

	for _, doc := range []string{"a", "b"} {
		if err := db.Write(ctx, []byte(doc)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if _, err := db.Read(ctx); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() after reset error = %v", err)
	}
	if entries, _ := db.History(ctx, 0); len(entries) != 0 {
		t.Errorf("History() after reset = %d entries", len(entries))
	}
	if last, err := db.GetLastReset(ctx); err != nil || last.IsZero() {
		t.Errorf("GetLastReset() after reset = %v, %v", last, err)
	}
}

func TestReopenKeepsState(t *testing.T) {
	db, dbPath := setupTestDB(t, nil)
	ctx := context.Background()

	if err := db.Write(ctx, []byte("kept")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(ctx, dbPath, &Options{Logger: logging.Discard})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read(ctx)
	if err != nil || string(got) != "kept" {
		t.Errorf("Read() = %q, %v", got, err)
	}
}

func TestMetadata(t *testing.T) {
	db, _ := setupTestDB(t, nil)
	ctx := context.Background()

	if _, err := db.GetMetadata(ctx, "nonexistent"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetMetadata(nonexistent) error = %v", err)
	}

	version, err := db.GetMetadata(ctx, metaSchemaVersion)
	if err != nil || version != "1" {
		t.Errorf("schema version = %q, %v", version, err)
	}

	if err := db.SetMetadata(ctx, "key1", "value1"); err != nil {
		t.Fatalf("SetMetadata() error = %v", err)
	}
	if err := db.SetMetadata(ctx, "key1", "value2"); err != nil {
		t.Fatalf("SetMetadata() update error = %v", err)
	}
	if value, err := db.GetMetadata(ctx, "key1"); err != nil || value != "value2" {
		t.Errorf("GetMetadata(key1) = %q, %v", value, err)
	}
}

func TestNewerSchemaRejected(t *testing.T) {
	db, dbPath := setupTestDB(t, nil)
	ctx := context.Background()

	if err := db.SetMetadata(ctx, metaSchemaVersion, "99"); err != nil {
		t.Fatalf("SetMetadata() error = %v", err)
	}
	_ = db.Close()

	if _, err := New(ctx, dbPath, &Options{Logger: logging.Discard}); err == nil {
		t.Error("New() with newer schema error = nil")
	}
}

func TestStateRoundTrip(t *testing.T) {
	db, _ := setupTestDB(t, nil)
	ctx := context.Background()

	s := state.Empty()
	s.Tracklist.URIs = []string{"file:///a.mp3", "file:///b.mp3"}
	s.Tracklist.Index = state.Ptr(1)
	s.Mixer.Volume = state.Ptr(40)

	if err := state.Persist(ctx, db, s, logging.Discard); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got := state.Load(ctx, db, logging.Discard)
	if len(got.Tracklist.URIs) != 2 || got.Tracklist.Index == nil || *got.Tracklist.Index != 1 {
		t.Errorf("Load() tracklist = %+v", got.Tracklist)
	}
	if got.Mixer.Volume == nil || *got.Mixer.Volume != 40 {
		t.Errorf("Load() volume = %v", got.Mixer.Volume)
	}
}
