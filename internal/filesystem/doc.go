/*
Package filesystem provides resilient filesystem operations for the state file
and local playlists, which commonly live on NFS-mounted music shares.

# Reads

ReadFileWithRetry and StatWithRetry wrap the os calls with retry logic for
ESTALE (stale file handle) errors, using capped exponential backoff:

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())

Any other error is returned immediately without retrying.

# Writes

WriteFileAtomic writes to a temporary file in the target directory, syncs it
and renames it into place. A crash mid-write leaves the previous file intact.

# Metrics

Operations report to an Observer (implemented in the metrics package) labeled
by volume. Volumes are resolved from paths with a VolumeResolver configured at
startup:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "state":     cfg.StateDir,
	    "playlists": cfg.PlaylistDir,
	}))
*/
package filesystem
