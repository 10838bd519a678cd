package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"autoplay/internal/player"
)

// Wire shape. Pointer fields with omitempty keep unknown leaves out of the
// document entirely.
type document struct {
	Version   int          `json:"version,omitempty"`
	Tracklist tracklistDoc `json:"tracklist"`
	Mixer     mixerDoc     `json:"mixer"`
	Playback  playbackDoc  `json:"playback"`
}

type tracklistDoc struct {
	URIs    *[]string `json:"uris,omitempty"`
	Index   *int      `json:"index,omitempty"`
	Consume *bool     `json:"consume,omitempty"`
	Random  *bool     `json:"random,omitempty"`
	Repeat  *bool     `json:"repeat,omitempty"`
	Single  *bool     `json:"single,omitempty"`
}

type mixerDoc struct {
	Mute   *bool `json:"mute,omitempty"`
	Volume *int  `json:"volume,omitempty"`
}

type playbackDoc struct {
	State        *player.PlaybackState `json:"state,omitempty"`
	TimePosition *int                  `json:"time_position,omitempty"`
}

// Encode serializes s. The version key is always written as CurrentVersion,
// so Decode returns s unchanged only when s.Version is CurrentVersion; a
// legacy state with version 0 is upgraded.
func Encode(s *SessionState) ([]byte, error) {
	if s == nil {
		s = Empty()
	}
	doc := document{
		Version: CurrentVersion,
		Tracklist: tracklistDoc{
			Index:   s.Tracklist.Index,
			Consume: s.Tracklist.Consume,
			Random:  s.Tracklist.Random,
			Repeat:  s.Tracklist.Repeat,
			Single:  s.Tracklist.Single,
		},
		Mixer:    mixerDoc{Mute: s.Mixer.Mute, Volume: s.Mixer.Volume},
		Playback: playbackDoc{State: s.Playback.State, TimePosition: s.Playback.TimePosition},
	}
	if s.Tracklist.URIs != nil {
		uris := s.Tracklist.URIs
		doc.Tracklist.URIs = &uris
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document. Only a document that is not a JSON object at all
// is an error; a group or leaf with the wrong type or an out-of-range value is
// dropped and its path reported in dropped.
func Decode(data []byte) (s *SessionState, dropped []string, err error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &top); err != nil {
		return nil, nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if top == nil {
		return nil, nil, fmt.Errorf("failed to decode session state: document is null")
	}

	d := &decoder{}
	s = Empty()

	if raw, ok := top["version"]; ok {
		var v int
		if json.Unmarshal(raw, &v) == nil && v >= 0 {
			s.Version = v
		} else {
			d.drop("version")
		}
	}

	if g := d.group(top, "tracklist"); g != nil {
		if raw, ok := g["uris"]; ok && !isNull(raw) {
			var uris []string
			if err := json.Unmarshal(raw, &uris); err == nil {
				if uris == nil {
					uris = []string{}
				}
				s.Tracklist.URIs = uris
			} else {
				d.drop("tracklist.uris")
			}
		}
		s.Tracklist.Index = decodeInt(d, g, "tracklist", "index", 0, -1)
		s.Tracklist.Consume = decodeBool(d, g, "tracklist", "consume")
		s.Tracklist.Random = decodeBool(d, g, "tracklist", "random")
		s.Tracklist.Repeat = decodeBool(d, g, "tracklist", "repeat")
		s.Tracklist.Single = decodeBool(d, g, "tracklist", "single")
	}

	if g := d.group(top, "mixer"); g != nil {
		s.Mixer.Mute = decodeBool(d, g, "mixer", "mute")
		s.Mixer.Volume = decodeInt(d, g, "mixer", "volume", 0, 100)
	}

	if g := d.group(top, "playback"); g != nil {
		if raw, ok := g["state"]; ok && !isNull(raw) {
			var name string
			if json.Unmarshal(raw, &name) == nil {
				if st, err := player.ParsePlaybackState(name); err == nil {
					s.Playback.State = &st
				} else {
					d.drop("playback.state")
				}
			} else {
				d.drop("playback.state")
			}
		}
		s.Playback.TimePosition = decodeInt(d, g, "playback", "time_position", 0, -1)
	}

	return s, d.dropped, nil
}

type decoder struct {
	dropped []string
}

func (d *decoder) drop(path string) {
	d.dropped = append(d.dropped, path)
}

// group returns the named sub-object, or nil when it is absent, null or not
// an object.
func (d *decoder) group(top map[string]json.RawMessage, name string) map[string]json.RawMessage {
	raw, ok := top[name]
	if !ok || isNull(raw) {
		return nil
	}
	var g map[string]json.RawMessage
	if err := json.Unmarshal(raw, &g); err != nil {
		d.drop(name)
		return nil
	}
	return g
}

func decodeBool(d *decoder, g map[string]json.RawMessage, group, key string) *bool {
	raw, ok := g[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		d.drop(group + "." + key)
		return nil
	}
	return &v
}

// decodeInt accepts integers in [lo, hi]; hi < 0 means unbounded.
func decodeInt(d *decoder, g map[string]json.RawMessage, group, key string, lo, hi int) *int {
	raw, ok := g[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil || v < lo || (hi >= 0 && v > hi) {
		d.drop(group + "." + key)
		return nil
	}
	return &v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
