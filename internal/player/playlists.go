package player

import (
	"context"
	"fmt"
	"strings"
)

// MultiPlaylists dispatches to the first provider that registers a URI's scheme.
type MultiPlaylists []Playlists

// URISchemes returns the union of all providers' schemes, in provider order.
// A provider that fails is skipped; the error of the last failure is returned
// only when no provider answered.
func (m MultiPlaylists) URISchemes(ctx context.Context) ([]string, error) {
	var (
		schemes []string
		seen    = make(map[string]bool)
		lastErr error
		ok      bool
	)
	for _, p := range m {
		s, err := p.URISchemes(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		ok = true
		for _, scheme := range s {
			if !seen[scheme] {
				seen[scheme] = true
				schemes = append(schemes, scheme)
			}
		}
	}
	if !ok && lastErr != nil {
		return nil, lastErr
	}
	return schemes, nil
}

// Items returns the playlist contents from the provider owning uri's scheme.
func (m MultiPlaylists) Items(ctx context.Context, uri string) ([]Track, error) {
	scheme, _, found := strings.Cut(uri, ":")
	if !found {
		return nil, fmt.Errorf("playlist uri %q has no scheme", uri)
	}
	for _, p := range m {
		schemes, err := p.URISchemes(ctx)
		if err != nil {
			continue
		}
		for _, s := range schemes {
			if s == scheme {
				return p.Items(ctx, uri)
			}
		}
	}
	return nil, fmt.Errorf("no playlist provider for scheme %q", scheme)
}
