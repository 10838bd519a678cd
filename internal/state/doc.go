// Package state holds the persisted session record and its codec.
//
// A SessionState groups tracklist, mixer and playback settings. Every leaf is
// optional and nil means unknown. The JSON document omits unknown leaves:
//
//	{
//	  "version": 1,
//	  "tracklist": {"uris": ["file:///a.mp3"], "index": 0, "consume": false},
//	  "mixer": {"volume": 50},
//	  "playback": {"state": "playing", "time_position": 1000}
//	}
//
// Documents written before the version key existed decode unchanged. Decoding
// is tolerant per leaf: a wrong type or out-of-range value drops only that
// leaf. Load and Persist never fail from the caller's point of view; they log
// ErrUnavailable, ErrCorrupt or ErrWriteFailed and carry on.
package state
