// Package expand resolves symbolic track references into playable URIs.
//
// Each input URI expands independently:
//
//	match:file:///music/**/*.flac   files matching the glob, as file:// URIs in lexical order
//	match:<other>                   unsupported, one warning, nothing
//	m3u:/playlists/evening.m3u      items of the playlist when the scheme is a playlist scheme
//	spotify:track:4uLU6hMCjMI75M1A  location percent-encoded, passed through
//	plain-string                    passed through unchanged
//
// Globs use github.com/bmatcuk/doublestar/v4 syntax, so "**" matches any
// number of directories.
package expand
