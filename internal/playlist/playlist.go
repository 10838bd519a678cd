package playlist

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"autoplay/internal/filesystem"
)

type Playlist struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// Item is one playlist entry. A stream or remote entry has URI set; a file
// entry has Path set to the resolved absolute path when Exists.
type Item struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	URI      string `json:"uri,omitempty"`
	OrigPath string `json:"origPath"`
	Exists   bool   `json:"exists"`
}

// Parse reads a playlist file, choosing the format by extension.
func Parse(path, mediaDir string) (*Playlist, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wpl":
		return ParseWPL(path, mediaDir)
	case ".m3u", ".m3u8":
		return ParseM3U(path, mediaDir)
	}
	return nil, fmt.Errorf("unsupported playlist format: %s", path)
}

// ParseM3U reads a plain or extended M3U playlist. Directives and comments
// (lines starting with '#') are skipped; #EXTINF titles become item names.
func ParseM3U(m3uPath, mediaDir string) (*Playlist, error) {
	data, err := filesystem.ReadFileWithRetry(m3uPath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	playlist := &Playlist{
		Name: strings.TrimSuffix(filepath.Base(m3uPath), filepath.Ext(m3uPath)),
		Path: m3uPath,
	}

	m3uDir := filepath.Dir(m3uPath)
	var title string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			if _, t, ok := strings.Cut(line, ","); ok {
				title = strings.TrimSpace(t)
			}
			continue
		case strings.HasPrefix(line, "#PLAYLIST:"):
			playlist.Name = strings.TrimSpace(strings.TrimPrefix(line, "#PLAYLIST:"))
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}

		item := resolveItem(line, m3uDir, mediaDir)
		if title != "" {
			item.Name = title
			title = ""
		}
		playlist.Items = append(playlist.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	playlist.Count = len(playlist.Items)
	return playlist, nil
}

// resolveItem locates src, trying in order: a URI, a path relative to the
// playlist, an absolute path, and finally the file name inside mediaDir.
func resolveItem(src, playlistDir, mediaDir string) Item {
	item := Item{OrigPath: src}

	if isURI(src) {
		u, err := url.Parse(src)
		if err != nil || u.Scheme != "file" {
			item.Name = src
			item.URI = src
			item.Exists = true
			return item
		}
		src = u.Path
	}

	// Handle Windows paths
	srcPath := strings.ReplaceAll(src, "\\", "/")
	item.Name = filepath.Base(srcPath)

	var candidates []string
	if filepath.IsAbs(srcPath) {
		candidates = append(candidates, filepath.Clean(srcPath))
	} else {
		candidates = append(candidates, filepath.Join(playlistDir, srcPath))
	}
	if mediaDir != "" {
		candidates = append(candidates, filepath.Join(mediaDir, filepath.Base(srcPath)))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			candidate = abs
		}
		item.Path = candidate
		item.Exists = true
		return item
	}
	return item
}

// isURI reports whether s starts with a scheme of two or more characters,
// which rules out Windows drive letters.
func isURI(s string) bool {
	scheme, _, ok := strings.Cut(s, ":")
	if !ok || len(scheme) < 2 {
		return false
	}
	for i, c := range scheme {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
