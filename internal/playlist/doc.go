// Package playlist reads local playlist files and serves them to the
// expansion engine as a player.Playlists collaborator.
//
// Supported formats:
//   - M3U and M3U8, plain or extended (#EXTINF titles, #PLAYLIST names)
//   - WPL (Windows Playlist): XML-based playlist format used by Windows Media Player
//
// Entries may be relative paths, absolute paths, Windows paths with drive
// letters or backslashes, file:// URIs, or stream URIs. File entries are
// resolved relative to the playlist first; when that fails the file name is
// looked up in the media directory, which lets playlists created on another
// machine keep working. Entries that cannot be found are skipped.
//
// Provider exposes the "m3u" and "wpl" URI schemes:
//
//	m3u:evening.m3u            relative to the playlist directory
//	wpl:/srv/playlists/a.wpl   absolute
package playlist
