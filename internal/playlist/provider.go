package playlist

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autoplay/internal/logging"
	"autoplay/internal/player"
)

// URI schemes served by Provider.
const (
	SchemeM3U = "m3u"
	SchemeWPL = "wpl"
)

// Provider serves local playlist files as a player.Playlists collaborator.
// "m3u:evening.m3u" and "wpl:/srv/playlists/party.wpl" name files; relative
// paths are taken from the playlist directory.
type Provider struct {
	dir      string
	mediaDir string
	log      logging.Logger
}

// NewProvider creates a Provider rooted at dir. mediaDir is searched by file
// name for entries whose recorded path no longer exists; it may be empty.
func NewProvider(dir, mediaDir string, log logging.Logger) *Provider {
	if log == nil {
		log = logging.Discard
	}
	return &Provider{dir: dir, mediaDir: mediaDir, log: log}
}

// URISchemes implements player.Playlists.
func (p *Provider) URISchemes(context.Context) ([]string, error) {
	return []string{SchemeM3U, SchemeWPL}, nil
}

// Items implements player.Playlists. Entries that cannot be found on disk
// are left out.
func (p *Provider) Items(_ context.Context, uri string) ([]player.Track, error) {
	path, err := p.path(uri)
	if err != nil {
		return nil, err
	}

	pl, err := Parse(path, p.mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist %s: %w", uri, err)
	}

	tracks := make([]player.Track, 0, len(pl.Items))
	for _, item := range pl.Items {
		switch {
		case item.URI != "":
			tracks = append(tracks, player.Track{URI: item.URI})
		case item.Exists:
			tracks = append(tracks, player.Track{URI: player.FileURI(item.Path)})
		default:
			p.log.Debug("Playlist %s: %s not found", uri, item.OrigPath)
		}
	}
	p.log.Debug("Playlist %s: %d of %d entries found", uri, len(tracks), pl.Count)
	return tracks, nil
}

func (p *Provider) path(uri string) (string, error) {
	scheme, location, ok := strings.Cut(uri, ":")
	if !ok || (scheme != SchemeM3U && scheme != SchemeWPL) {
		return "", fmt.Errorf("not a local playlist uri: %q", uri)
	}
	location = strings.TrimPrefix(location, "//")
	if location == "" {
		return "", fmt.Errorf("empty playlist path in %q", uri)
	}

	path := filepath.FromSlash(location)
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}

	want := "." + scheme
	if ext := strings.ToLower(filepath.Ext(path)); ext != want && !(scheme == SchemeM3U && ext == ".m3u8") {
		return "", fmt.Errorf("playlist %q does not have a %s extension", uri, want)
	}
	return path, nil
}
