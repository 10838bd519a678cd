package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

const (
	schemaVersion     = 1
	metaSchemaVersion = "schema_version"
	metaLastReset     = "last_reset"
)

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return d.getMetadata(ctx, key)
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return d.setMetadata(ctx, key, value)
}

func (d *Database) getMetadata(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value.String, nil
}

func (d *Database) setMetadata(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// getSchemaVersion returns 0 for a database created before versioning.
func (d *Database) getSchemaVersion(ctx context.Context) (int, error) {
	value, err := d.getMetadata(ctx, metaSchemaVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetLastReset returns when Reset last ran, or the zero time if never.
func (d *Database) GetLastReset(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, metaLastReset)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}
