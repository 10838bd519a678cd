// Package override merges configured option values with the saved session.
//
// Each restorable option is an [Option]: either a configured literal or
// inherited ("auto"), in which case the saved value is used. Literals are
// validated when configuration is parsed, from YAML or from the environment:
//
//	tracklist:
//	  uris: [m3u:/music/morning.m3u]
//	  random: true
//	mixer:
//	  volume: 35
//	playback:
//	  state: auto
//
// A [Resolver] answers which value applies to each [Key]; Apply pushes it to
// the player and reports a rejected setter as [ErrOptionApplyFailed].
package override
