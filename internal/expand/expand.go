package expand

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"autoplay/internal/logging"
	"autoplay/internal/metrics"
	"autoplay/internal/player"
)

// ErrContentUnresolvable is logged when a playlist reference yields nothing.
var ErrContentUnresolvable = errors.New("content unresolvable")

const matchPrefix = "match:"

// GlobFunc returns the files matching a filesystem pattern.
type GlobFunc func(pattern string) ([]string, error)

// FileGlob matches regular files with doublestar syntax, so "**" crosses
// directory boundaries.
func FileGlob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
}

// Expander turns configured or saved URIs into concrete track URIs.
type Expander struct {
	playlists player.Playlists
	glob      GlobFunc
	log       logging.Logger
}

// New creates an Expander. playlists may be nil when the host has none.
func New(playlists player.Playlists, log logging.Logger) *Expander {
	if log == nil {
		log = logging.Discard
	}
	return &Expander{playlists: playlists, glob: FileGlob, log: log}
}

// WithGlob replaces the filesystem matcher.
func (e *Expander) WithGlob(glob GlobFunc) *Expander {
	e.glob = glob
	return e
}

// Expand returns the concatenation, in input order, of each URI's expansion.
// A URI that cannot be expanded contributes nothing and does not affect the
// others. The result is never nil.
func (e *Expander) Expand(ctx context.Context, uris []string) []string {
	out := make([]string, 0, len(uris))
	var schemes map[string]bool

	for _, uri := range uris {
		if pattern, ok := strings.CutPrefix(uri, matchPrefix); ok {
			matched := e.match(uri, pattern)
			metrics.ExpandedURIsTotal.WithLabelValues("match").Add(float64(len(matched)))
			out = append(out, matched...)
			continue
		}

		scheme, location, ok := splitScheme(uri)
		if !ok {
			metrics.ExpandedURIsTotal.WithLabelValues("bare").Inc()
			out = append(out, uri)
			continue
		}

		if schemes == nil {
			schemes = e.playlistSchemes(ctx)
		}
		if schemes[scheme] {
			items := e.playlist(ctx, uri)
			metrics.ExpandedURIsTotal.WithLabelValues("playlist").Add(float64(len(items)))
			out = append(out, items...)
			continue
		}

		metrics.ExpandedURIsTotal.WithLabelValues("uri").Inc()
		out = append(out, scheme+":"+EncodeLocation(location))
	}
	return out
}

func (e *Expander) match(uri, pattern string) []string {
	path, ok := strings.CutPrefix(pattern, player.FileScheme)
	if !ok {
		e.log.Warn("Matching for URI %s not supported: %s", pattern, uri)
		return nil
	}

	files, err := e.glob(filepath.FromSlash(path))
	if err != nil {
		e.log.Warn("Invalid match pattern %s: %v", pattern, err)
		return nil
	}
	if len(files) == 0 {
		e.log.Debug("No files match %s", pattern)
		return nil
	}

	sort.Strings(files)
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, player.FileURI(f))
	}
	return out
}

func (e *Expander) playlistSchemes(ctx context.Context) map[string]bool {
	schemes := make(map[string]bool)
	if e.playlists == nil {
		return schemes
	}
	names, err := e.playlists.URISchemes(ctx)
	if err != nil {
		e.log.Warn("Cannot list playlist URI schemes: %v", err)
		return schemes
	}
	for _, s := range names {
		schemes[s] = true
	}
	return schemes
}

func (e *Expander) playlist(ctx context.Context, uri string) []string {
	items, err := e.playlists.Items(ctx, uri)
	if err == nil && len(items) == 0 {
		err = errors.New("playlist is empty")
	}
	if err != nil {
		metrics.RecordDiagnostic(metrics.KindContentUnresolvable)
		e.log.Warn("%v", fmt.Errorf("%w: playlist %s: %w", ErrContentUnresolvable, uri, err))
		return nil
	}

	out := make([]string, 0, len(items))
	for _, t := range items {
		if t.URI != "" {
			out = append(out, t.URI)
		}
	}
	return out
}

// splitScheme splits "scheme:location". ok is false for strings without a
// valid RFC 3986 scheme, which are passed through as bare strings.
func splitScheme(uri string) (scheme, location string, ok bool) {
	scheme, location, found := strings.Cut(uri, ":")
	if !found || scheme == "" {
		return "", "", false
	}
	for i, c := range scheme {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", "", false
		}
	}
	return scheme, location, true
}

// EncodeLocation percent-encodes each "/"-separated segment of the location
// of a configured or saved URI. Segments that are already encoded are decoded
// first, so encoding is idempotent. Raw filesystem paths go through
// player.FileURI instead.
func EncodeLocation(location string) string {
	segments := strings.Split(location, "/")
	for i, seg := range segments {
		if decoded, err := url.PathUnescape(seg); err == nil {
			seg = decoded
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
