package state

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"autoplay/internal/player"
)

func fullState() *SessionState {
	return &SessionState{
		Version: CurrentVersion,
		Tracklist: Tracklist{
			URIs:    []string{"file:///a.mp3", "file:///a.mp3", "spotify:track:1"},
			Index:   Ptr(1),
			Consume: Ptr(false),
			Random:  Ptr(true),
			Repeat:  Ptr(false),
			Single:  Ptr(true),
		},
		Mixer:    Mixer{Mute: Ptr(false), Volume: Ptr(50)},
		Playback: Playback{State: Ptr(player.StatePaused), TimePosition: Ptr(1000)},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state *SessionState
	}{
		{name: "full", state: fullState()},
		{name: "empty", state: &SessionState{Version: CurrentVersion}},
		{name: "known empty queue", state: &SessionState{Version: CurrentVersion, Tracklist: Tracklist{URIs: []string{}}}},
		{name: "only mixer", state: &SessionState{Version: CurrentVersion, Mixer: Mixer{Volume: Ptr(0)}}},
		{name: "zero values are known", state: &SessionState{
			Version:   CurrentVersion,
			Tracklist: Tracklist{Index: Ptr(0), Consume: Ptr(false)},
			Playback:  Playback{State: Ptr(player.StateStopped), TimePosition: Ptr(0)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.state)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, dropped, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(dropped) != 0 {
				t.Errorf("Decode() dropped %v", dropped)
			}
			if !reflect.DeepEqual(got, tt.state) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v\n json %s", got, tt.state, data)
			}
		})
	}
}

func TestEncode_UpgradesLegacyVersion(t *testing.T) {
	legacy := fullState()
	legacy.Version = 0

	data, err := Encode(legacy)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", got.Version, CurrentVersion)
	}

	got.Version = 0
	if !reflect.DeepEqual(got, legacy) {
		t.Errorf("round trip changed more than the version:\n got  %+v\n want %+v", got, legacy)
	}
}

func TestEncode_OmitsUnknownLeaves(t *testing.T) {
	data, err := Encode(&SessionState{Mixer: Mixer{Volume: Ptr(50)}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	s := string(data)

	for _, want := range []string{`"version": 1`, `"volume": 50`, `"tracklist": {}`, `"playback": {}`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded document missing %s:\n%s", want, s)
		}
	}
	for _, unwanted := range []string{"uris", "mute", "null"} {
		if strings.Contains(s, unwanted) {
			t.Errorf("encoded document should not contain %q:\n%s", unwanted, s)
		}
	}
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	got, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("Encode(nil) decoded to non-empty state %+v", got)
	}
}

func TestDecode_LegacyDocument(t *testing.T) {
	legacy := `{"tracklist": {"uris": ["file:///a.mp3"], "index": 0, "consume": false,
		"random": null, "repeat": null, "single": null},
		"mixer": {"mute": null, "volume": 50},
		"playback": {"state": "playing", "time_position": 1000}}`

	got, dropped, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}

	want := &SessionState{
		Tracklist: Tracklist{URIs: []string{"file:///a.mp3"}, Index: Ptr(0), Consume: Ptr(false)},
		Mixer:     Mixer{Volume: Ptr(50)},
		Playback:  Playback{State: Ptr(player.StatePlaying), TimePosition: Ptr(1000)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_PartialSchema(t *testing.T) {
	doc := `{
		"version": "one",
		"tracklist": {"uris": ["a", 3], "index": -1, "consume": "yes", "random": true},
		"mixer": [1, 2],
		"playback": {"state": "rewinding", "time_position": 12.5},
		"extra": {"ignored": true}
	}`

	got, dropped, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	sort.Strings(dropped)
	wantDropped := []string{
		"mixer",
		"playback.state",
		"playback.time_position",
		"tracklist.consume",
		"tracklist.index",
		"tracklist.uris",
		"version",
	}
	if !reflect.DeepEqual(dropped, wantDropped) {
		t.Errorf("dropped = %v, want %v", dropped, wantDropped)
	}

	want := &SessionState{Tracklist: Tracklist{Random: Ptr(true)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_VolumeRange(t *testing.T) {
	tests := []struct {
		doc  string
		want *int
	}{
		{doc: `{"mixer":{"volume":0}}`, want: Ptr(0)},
		{doc: `{"mixer":{"volume":100}}`, want: Ptr(100)},
		{doc: `{"mixer":{"volume":101}}`, want: nil},
		{doc: `{"mixer":{"volume":-5}}`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			got, _, err := Decode([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got.Mixer.Volume, tt.want) {
				t.Errorf("volume = %v, want %v", got.Mixer.Volume, tt.want)
			}
		})
	}
}

func TestDecode_Corrupt(t *testing.T) {
	for _, doc := range []string{"", "{", "null", "[1,2]", `"text"`, "{\"tracklist\": {\"uris\": [}"} {
		t.Run(doc, func(t *testing.T) {
			if _, _, err := Decode([]byte(doc)); err == nil {
				t.Errorf("Decode(%q) error = nil, want error", doc)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := fullState()
	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatalf("Clone() = %+v, want %+v", c, orig)
	}

	c.Tracklist.URIs[0] = "changed"
	*c.Mixer.Volume = 1
	*c.Playback.State = player.StateStopped

	if orig.Tracklist.URIs[0] != "file:///a.mp3" || *orig.Mixer.Volume != 50 || *orig.Playback.State != player.StatePaused {
		t.Error("mutating the clone changed the original")
	}

	var nilState *SessionState
	if nilState.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty().IsEmpty() = false")
	}
	if (&SessionState{Tracklist: Tracklist{URIs: []string{}}}).IsEmpty() {
		t.Error("known empty queue should not count as empty state")
	}
	if fullState().IsEmpty() {
		t.Error("fullState().IsEmpty() = true")
	}
}
