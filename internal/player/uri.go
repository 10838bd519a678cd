package player

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileScheme prefixes URIs of local files.
const FileScheme = "file://"

// FileURI returns the file URI of a filesystem path. Each path segment is
// percent-encoded as is, so a literal "%" in a file name stays part of it.
func FileURI(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return FileScheme + strings.Join(segments, "/")
}

// FilePath is the inverse of FileURI. ok is false when uri is not a file URI
// or is not validly encoded.
func FilePath(uri string) (path string, ok bool) {
	rest, found := strings.CutPrefix(uri, FileScheme)
	if !found {
		return "", false
	}
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return filepath.FromSlash(path), true
}
