package mpd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"

	"autoplay/internal/logging"
	"autoplay/internal/player"
)

// SchemePlaylist is the URI scheme of MPD stored playlists ("playlist:Evening").
const SchemePlaylist = "playlist"

// conn is the subset of *mpd.Client used here.
type conn interface {
	Ping() error
	Close() error
	Status() (mpd.Attrs, error)
	Clear() error
	Add(uri string) error
	PlaylistInfo(start, end int) ([]mpd.Attrs, error)
	Consume(consume bool) error
	Random(random bool) error
	Repeat(repeat bool) error
	Single(single bool) error
	SetVolume(volume int) error
	PlayID(id int) error
	Pause(pause bool) error
	Stop() error
	SeekCur(d time.Duration, relative bool) error
	ListAllInfo(uri string) ([]mpd.Attrs, error)
	PlaylistContents(name string) ([]mpd.Attrs, error)
}

type dialFunc func() (conn, error)

// Config locates the MPD server.
type Config struct {
	// Network is "tcp" or "unix". Empty means "unix" when Addr starts with
	// '/' and "tcp" otherwise.
	Network  string
	Addr     string
	Password string
}

func (c Config) network() string {
	if c.Network != "" {
		return c.Network
	}
	if strings.HasPrefix(c.Addr, "/") {
		return "unix"
	}
	return "tcp"
}

// Client implements every player collaborator on top of one MPD connection,
// redialled when it goes stale. MPD has no mute control, so mute is emulated:
// muting remembers the volume and sets it to 0, unmuting restores it.
type Client struct {
	dial dialFunc
	log  logging.Logger

	mu     sync.Mutex
	conn   conn
	muted  bool
	volume int // remembered volume while muted
}

// New creates a Client. No connection is made until the first call.
func New(cfg Config, log logging.Logger) *Client {
	dial := func() (conn, error) {
		if cfg.Password != "" {
			return mpd.DialAuthenticated(cfg.network(), cfg.Addr, cfg.Password)
		}
		return mpd.Dial(cfg.network(), cfg.Addr)
	}
	return newClient(dial, log)
}

func newClient(dial dialFunc, log logging.Logger) *Client {
	if log == nil {
		log = logging.Discard
	}
	return &Client{dial: dial, log: log}
}

// Core returns the client wired as every collaborator.
func (c *Client) Core() player.Core {
	return player.Core{
		Tracklist: c,
		Mixer:     mixer{c},
		Playback:  playback{c},
		Library:   c,
		Playlists: playlists{c},
	}
}

// Close drops the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.withConn(ctx, func(conn) error { return nil })
}

// withConn runs fn with a live connection, dialling or redialling first.
func (c *Client) withConn(ctx context.Context, fn func(conn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Ping(); err != nil {
			c.log.Debug("MPD connection lost, reconnecting: %v", err)
			_ = c.conn.Close()
			c.conn = nil
		}
	}
	if c.conn == nil {
		cn, err := c.dial()
		if err != nil {
			return fmt.Errorf("failed to connect to MPD: %w", err)
		}
		c.conn = cn
	}
	return fn(c.conn)
}

func (c *Client) status(ctx context.Context) (mpd.Attrs, error) {
	var attrs mpd.Attrs
	err := c.withConn(ctx, func(cn conn) error {
		var err error
		attrs, err = cn.Status()
		return err
	})
	return attrs, err
}

func (c *Client) statusFlag(ctx context.Context, key string) (bool, error) {
	attrs, err := c.status(ctx)
	if err != nil {
		return false, err
	}
	return parseFlag(attrs, key)
}

// --- Tracklist ---

// Clear empties the queue.
func (c *Client) Clear(ctx context.Context) error {
	return c.withConn(ctx, func(cn conn) error { return cn.Clear() })
}

// Add appends uris to the queue. URIs the server rejects are skipped so the
// rest still get queued; a lost connection aborts. File URIs are sent as the
// absolute paths MPD reports them by.
func (c *Client) Add(ctx context.Context, uris []string) error {
	return c.withConn(ctx, func(cn conn) error {
		for _, uri := range uris {
			err := cn.Add(songPath(uri))
			if err == nil {
				continue
			}
			if pingErr := cn.Ping(); pingErr != nil {
				return err
			}
			c.log.Debug("MPD refused %s: %v", uri, err)
		}
		return nil
	})
}

func (c *Client) Consume(ctx context.Context) (bool, error) { return c.statusFlag(ctx, "consume") }
func (c *Client) Random(ctx context.Context) (bool, error)  { return c.statusFlag(ctx, "random") }
func (c *Client) Repeat(ctx context.Context) (bool, error)  { return c.statusFlag(ctx, "repeat") }
func (c *Client) Single(ctx context.Context) (bool, error)  { return c.statusFlag(ctx, "single") }

func (c *Client) SetConsume(ctx context.Context, v bool) error {
	return c.withConn(ctx, func(cn conn) error { return cn.Consume(v) })
}

func (c *Client) SetRandom(ctx context.Context, v bool) error {
	return c.withConn(ctx, func(cn conn) error { return cn.Random(v) })
}

func (c *Client) SetRepeat(ctx context.Context, v bool) error {
	return c.withConn(ctx, func(cn conn) error { return cn.Repeat(v) })
}

func (c *Client) SetSingle(ctx context.Context, v bool) error {
	return c.withConn(ctx, func(cn conn) error { return cn.Single(v) })
}

// Tracks returns the queue in order.
func (c *Client) Tracks(ctx context.Context) ([]player.Track, error) {
	entries, err := c.TLTracks(ctx)
	if err != nil {
		return nil, err
	}
	tracks := make([]player.Track, len(entries))
	for i, e := range entries {
		tracks[i] = e.Track
	}
	return tracks, nil
}

// TLTracks returns the queue with MPD song ids as identifiers.
func (c *Client) TLTracks(ctx context.Context) ([]player.TLTrack, error) {
	var attrs []mpd.Attrs
	err := c.withConn(ctx, func(cn conn) error {
		var err error
		attrs, err = cn.PlaylistInfo(-1, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTLTracks(attrs)
}

// Index returns the queue position of the current song.
func (c *Client) Index(ctx context.Context) (int, bool, error) {
	attrs, err := c.status(ctx)
	if err != nil {
		return 0, false, err
	}
	pos, ok := attrs["song"]
	if !ok {
		return 0, false, nil
	}
	index, err := strconv.Atoi(pos)
	if err != nil {
		return 0, false, fmt.Errorf("invalid song position %q: %w", pos, err)
	}
	return index, true, nil
}

// --- Library ---

// Lookup resolves each URI through the database. Remote and local file URIs
// are outside the database and are taken as single tracks; unknown URIs map
// to no tracks.
func (c *Client) Lookup(ctx context.Context, uris []string) (map[string][]player.Track, error) {
	out := make(map[string][]player.Track, len(uris))
	err := c.withConn(ctx, func(cn conn) error {
		for _, uri := range uris {
			if outsideDatabase(uri) {
				out[uri] = []player.Track{{URI: uri}}
				continue
			}
			attrs, err := cn.ListAllInfo(uri)
			if err != nil {
				if pingErr := cn.Ping(); pingErr != nil {
					return err
				}
				c.log.Debug("MPD lookup of %s failed: %v", uri, err)
				out[uri] = nil
				continue
			}
			out[uri] = toTracks(attrs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- Mixer ---

type mixer struct{ c *Client }

func (m mixer) Mute(context.Context) (bool, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return m.c.muted, nil
}

func (m mixer) SetMute(ctx context.Context, v bool) error {
	current, err := m.serverVolume(ctx)
	if err != nil {
		return err
	}
	return m.c.withConn(ctx, func(cn conn) error {
		if v == m.c.muted {
			return nil
		}
		if v {
			if err := cn.SetVolume(0); err != nil {
				return err
			}
			m.c.volume = current
		} else if err := cn.SetVolume(m.c.volume); err != nil {
			return err
		}
		m.c.muted = v
		return nil
	})
}

// Volume returns the remembered volume while muted.
func (m mixer) Volume(ctx context.Context) (int, error) {
	m.c.mu.Lock()
	muted, remembered := m.c.muted, m.c.volume
	m.c.mu.Unlock()
	if muted {
		return remembered, nil
	}
	return m.serverVolume(ctx)
}

// SetVolume while muted only changes the volume restored on unmute.
func (m mixer) SetVolume(ctx context.Context, v int) error {
	return m.c.withConn(ctx, func(cn conn) error {
		if m.c.muted {
			m.c.volume = v
			return nil
		}
		return cn.SetVolume(v)
	})
}

func (m mixer) serverVolume(ctx context.Context) (int, error) {
	attrs, err := m.c.status(ctx)
	if err != nil {
		return 0, err
	}
	return parseVolume(attrs)
}

// --- Playback ---

type playback struct{ c *Client }

func (p playback) Stop(ctx context.Context) error {
	return p.c.withConn(ctx, func(cn conn) error { return cn.Stop() })
}

func (p playback) Play(ctx context.Context, tlid player.TLID) error {
	return p.c.withConn(ctx, func(cn conn) error { return cn.PlayID(int(tlid)) })
}

func (p playback) Pause(ctx context.Context) error {
	return p.c.withConn(ctx, func(cn conn) error { return cn.Pause(true) })
}

func (p playback) Seek(ctx context.Context, ms int) error {
	return p.c.withConn(ctx, func(cn conn) error {
		return cn.SeekCur(time.Duration(ms)*time.Millisecond, false)
	})
}

func (p playback) State(ctx context.Context) (player.PlaybackState, error) {
	attrs, err := p.c.status(ctx)
	if err != nil {
		return "", err
	}
	return parseState(attrs["state"])
}

func (p playback) TimePosition(ctx context.Context) (int, error) {
	attrs, err := p.c.status(ctx)
	if err != nil {
		return 0, err
	}
	return parseElapsed(attrs)
}

// --- Playlists ---

type playlists struct{ c *Client }

func (playlists) URISchemes(context.Context) ([]string, error) {
	return []string{SchemePlaylist}, nil
}

// Items returns the contents of the stored playlist named by uri.
func (p playlists) Items(ctx context.Context, uri string) ([]player.Track, error) {
	name, ok := strings.CutPrefix(uri, SchemePlaylist+":")
	if !ok || name == "" {
		return nil, fmt.Errorf("not an MPD playlist uri: %q", uri)
	}
	var attrs []mpd.Attrs
	err := p.c.withConn(ctx, func(cn conn) error {
		var err error
		attrs, err = cn.PlaylistContents(name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTracks(attrs), nil
}

// --- Attrs parsing ---

var errNoMixer = fmt.Errorf("%w: MPD has no mixer", player.ErrUnsupported)

func parseFlag(attrs mpd.Attrs, key string) (bool, error) {
	v, ok := attrs[key]
	if !ok {
		return false, fmt.Errorf("status has no %s", key)
	}
	switch v {
	case "0":
		return false, nil
	case "1", "oneshot":
		return true, nil
	}
	return false, fmt.Errorf("invalid %s value %q", key, v)
}

func parseVolume(attrs mpd.Attrs) (int, error) {
	v, ok := attrs["volume"]
	if !ok {
		return 0, errNoMixer
	}
	volume, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: %w", v, err)
	}
	if volume < 0 {
		return 0, errNoMixer
	}
	return volume, nil
}

func parseState(s string) (player.PlaybackState, error) {
	switch s {
	case "play":
		return player.StatePlaying, nil
	case "pause":
		return player.StatePaused, nil
	case "stop":
		return player.StateStopped, nil
	}
	return "", fmt.Errorf("invalid player state %q", s)
}

// parseElapsed reads the position in milliseconds from "elapsed", falling
// back to the whole seconds of the older "time" field. Stopped players
// report neither and are at 0.
func parseElapsed(attrs mpd.Attrs) (int, error) {
	if v, ok := attrs["elapsed"]; ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid elapsed %q: %w", v, err)
		}
		return int(secs*1000 + 0.5), nil
	}
	if v, ok := attrs["time"]; ok {
		elapsed, _, _ := strings.Cut(v, ":")
		secs, err := strconv.Atoi(elapsed)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", v, err)
		}
		return secs * 1000, nil
	}
	return 0, nil
}

func toTLTracks(attrs []mpd.Attrs) ([]player.TLTrack, error) {
	out := make([]player.TLTrack, 0, len(attrs))
	for _, a := range attrs {
		id, err := strconv.Atoi(a["Id"])
		if err != nil {
			return nil, fmt.Errorf("invalid song id %q for %s: %w", a["Id"], a["file"], err)
		}
		out = append(out, player.TLTrack{TLID: player.TLID(id), Track: player.Track{URI: songURI(a["file"])}})
	}
	return out, nil
}

// toTracks keeps song entries only; directories and playlists in listings are skipped.
func toTracks(attrs []mpd.Attrs) []player.Track {
	out := make([]player.Track, 0, len(attrs))
	for _, a := range attrs {
		if f := a["file"]; f != "" {
			out = append(out, player.Track{URI: songURI(f)})
		}
	}
	return out
}

// outsideDatabase reports whether MPD plays uri without a database entry:
// any URL, including local files.
func outsideDatabase(uri string) bool {
	scheme, _, ok := strings.Cut(uri, "://")
	return ok && scheme != ""
}

// songPath maps a file URI to the absolute path MPD queues it under. Other
// URIs are sent unchanged.
func songPath(uri string) string {
	if path, ok := player.FilePath(uri); ok {
		return path
	}
	return uri
}

// songURI maps the absolute paths MPD reports for local files back to file
// URIs. Database-relative paths and URLs are kept.
func songURI(file string) string {
	if strings.HasPrefix(file, "/") {
		return player.FileURI(file)
	}
	return file
}
