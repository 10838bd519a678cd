package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"autoplay/internal/filesystem"
	"autoplay/internal/logging"
	"autoplay/internal/metrics"
)

var (
	// ErrUnavailable means there is no saved state to read (missing or unreadable store).
	ErrUnavailable = errors.New("persisted state unavailable")
	// ErrCorrupt means the saved state could not be decoded.
	ErrCorrupt = errors.New("persisted state corrupt")
	// ErrWriteFailed means the state could not be written; it is lost for this cycle.
	ErrWriteFailed = errors.New("persisting state failed")
)

// Store is a byte-oriented home for one encoded SessionState.
type Store interface {
	// Read returns the stored document. A store that has never been written
	// returns an error satisfying errors.Is(err, fs.ErrNotExist).
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Location describes the store for diagnostics.
	Location() string
}

// FileStore keeps the document in a single file, replaced atomically on write.
type FileStore struct {
	path  string
	retry filesystem.RetryConfig
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, retry: filesystem.DefaultRetryConfig()}
}

// Read reads the state file, retrying on NFS stale handles.
func (f *FileStore) Read(context.Context) ([]byte, error) {
	return filesystem.ReadFileWithRetry(f.path, f.retry)
}

// Write replaces the state file atomically.
func (f *FileStore) Write(_ context.Context, data []byte) error {
	return filesystem.WriteFileAtomic(f.path, data, 0o644)
}

// Location returns the file path.
func (f *FileStore) Location() string {
	return f.path
}

// Read loads the state from store. It returns an error wrapping ErrUnavailable
// or ErrCorrupt on failure; use Load when failures should only be logged.
func Read(ctx context.Context, store Store, log logging.Logger) (*SessionState, error) {
	data, err := store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, store.Location(), err)
	}

	s, dropped, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, store.Location(), err)
	}

	for _, path := range dropped {
		log.Warn("Ignoring invalid value for %s in state from '%s'", path, store.Location())
	}
	if s.Version > CurrentVersion {
		log.Warn("State from '%s' has version %d, newer than %d; reading known fields only",
			store.Location(), s.Version, CurrentVersion)
	}
	return s, nil
}

// Load reads the state from store and never fails: a missing or unreadable
// store and a corrupt document both yield an empty skeleton plus a diagnostic.
func Load(ctx context.Context, store Store, log logging.Logger) *SessionState {
	s, err := Read(ctx, store, log)
	switch {
	case err == nil:
		log.Debug("State read from '%s'", store.Location())
		return s
	case errors.Is(err, ErrCorrupt):
		metrics.RecordDiagnostic(metrics.KindCorrupt)
		log.Error("Error reading state: %v", err)
	case errors.Is(err, fs.ErrNotExist):
		log.Info("No state restored, no saved state at '%s'", store.Location())
	default:
		metrics.RecordDiagnostic(metrics.KindUnavailable)
		log.Warn("No state restored, because there was a problem opening the state: %v", err)
	}
	return Empty()
}

// Persist encodes s and writes it to store. Failures are logged and returned
// wrapped in ErrWriteFailed so callers can count them; they never need handling.
func Persist(ctx context.Context, store Store, s *SessionState, log logging.Logger) error {
	start := time.Now()

	data, err := Encode(s)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrWriteFailed, err)
		metrics.RecordDiagnostic(metrics.KindWriteFailed)
		metrics.PersistTotal.WithLabelValues("error").Inc()
		log.Error("Problem saving state to '%s': %v", store.Location(), err)
		return err
	}

	if err := store.Write(ctx, data); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrWriteFailed, store.Location(), err)
		metrics.RecordDiagnostic(metrics.KindWriteFailed)
		metrics.PersistTotal.WithLabelValues("error").Inc()
		log.Error("Cannot write state: %v", err)
		return err
	}

	metrics.PersistTotal.WithLabelValues("success").Inc()
	log.Debug("State written to '%s' in %v", store.Location(), time.Since(start))
	return nil
}
