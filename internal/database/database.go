package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"autoplay/internal/logging"
	"autoplay/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// DefaultHistoryLimit is the number of captures kept when Options.HistoryLimit is zero.
const DefaultHistoryLimit = 20

// Options configures a Database.
type Options struct {
	// HistoryLimit bounds the capture history. Zero means DefaultHistoryLimit;
	// a negative value disables history.
	HistoryLimit int
	Logger       logging.Logger
}

// Database is a state.Store keeping the current session state in SQLite,
// plus a bounded history of previous captures.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	limit  int
	log    logging.Logger
}

// HistoryEntry is one past capture.
type HistoryEntry struct {
	ID       int64     `json:"id"`
	SavedAt  time.Time `json:"savedAt"`
	Document []byte    `json:"document"`
}

// New opens (creating if needed) the database file at dbPath.
// The parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string, opts *Options) (*Database, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Std()
	}
	limit := opts.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	log.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath, log); err != nil {
		log.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
		limit:  limit,
		log:    log,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	-- Current state (single row)
	CREATE TABLE IF NOT EXISTS session_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		document BLOB NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	-- Previous captures, newest last
	CREATE TABLE IF NOT EXISTS state_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_state_history_saved_at ON state_history(saved_at);

	-- Metadata table
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err = d.db.ExecContext(ctx, schema)
	if err != nil {
		return err
	}
	err = d.runMigrations(ctx)
	return err
}

// runMigrations brings an older schema up to schemaVersion.
func (d *Database) runMigrations(ctx context.Context) error {
	version, err := d.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}

	d.log.Info("Migrating database: schema version %d to %d", version, schemaVersion)
	return d.setMetadata(ctx, metaSchemaVersion, fmt.Sprint(schemaVersion))
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Location implements state.Store.
func (d *Database) Location() string {
	return "sqlite:" + d.dbPath
}

// Read implements state.Store. An empty database reports fs.ErrNotExist.
func (d *Database) Read(ctx context.Context) ([]byte, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("read_state", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var document []byte
	err = d.db.QueryRowContext(ctx, "SELECT document FROM session_state WHERE id = 1").Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, fmt.Errorf("no saved state in %s: %w", d.dbPath, fs.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return document, nil
}

// Write implements state.Store. The previous document, if any, moves into
// the history, which is then pruned to the configured limit.
func (d *Database) Write(ctx context.Context, data []byte) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("write_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = d.writeTx(ctx, tx, data)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	if d.limit > 0 {
		// Pruning failures leave extra rows behind but never lose the write.
		if pruneErr := d.pruneHistory(ctx); pruneErr != nil {
			d.log.Warn("Failed to prune state history: %v", pruneErr)
		}
	}
	return nil
}

func (d *Database) writeTx(ctx context.Context, tx *sql.Tx, data []byte) error {
	if d.limit > 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO state_history (document, saved_at)
			SELECT document, updated_at FROM session_state WHERE id = 1
		`)
		if err != nil {
			return fmt.Errorf("failed to archive previous state: %w", err)
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO session_state (id, document, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store state: %w", err)
	}
	return nil
}

// pruneHistory keeps only the newest d.limit history rows. Caller holds d.mu.
func (d *Database) pruneHistory(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("prune_history", start, err) }()

	_, err = d.db.ExecContext(ctx, `
		DELETE FROM state_history
		WHERE id NOT IN (SELECT id FROM state_history ORDER BY id DESC LIMIT ?)
	`, d.limit)
	return err
}

// History returns past captures, newest first, at most limit entries
// (all of them when limit <= 0).
func (d *Database) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_history", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, document, saved_at FROM state_history ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var savedAt int64
		if err = rows.Scan(&e.ID, &e.Document, &savedAt); err != nil {
			return nil, err
		}
		e.SavedAt = time.Unix(savedAt, 0)
		entries = append(entries, e)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Reset removes the current state and the history.
func (d *Database) Reset(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("write_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM session_state; DELETE FROM state_history;")
	if err != nil {
		return err
	}
	err = d.setMetadata(ctx, metaLastReset, time.Now().UTC().Format(time.RFC3339))
	return err
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string, log logging.Logger) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}
	log.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile) // Explicitly ignore cleanup error

	for _, path := range []string{dbPath, dbPath + "-wal"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		log.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			log.Warn("Database file %s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		}
	}
	return nil
}
