package player

import "testing"

func TestFileURI(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/music/a.mp3", "file:///music/a.mp3"},
		{"/music/My Song.mp3", "file:///music/My%20Song.mp3"},
		{"/music/100%25 live.mp3", "file:///music/100%2525%20live.mp3"},
		{"/music/a%20b.mp3", "file:///music/a%2520b.mp3"},
		{"/music/AC#DC?.mp3", "file:///music/AC%23DC%3F.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := FileURI(tt.path)
			if got != tt.want {
				t.Errorf("FileURI(%q) = %q, want %q", tt.path, got, tt.want)
			}
			back, ok := FilePath(got)
			if !ok || back != tt.path {
				t.Errorf("FilePath(%q) = %q, %v, want %q", got, back, ok, tt.path)
			}
		})
	}
}

func TestFilePath_NotAFileURI(t *testing.T) {
	for _, uri := range []string{"/music/a.mp3", "http://radio/stream", "file:///bad%zz"} {
		if path, ok := FilePath(uri); ok {
			t.Errorf("FilePath(%q) = %q, want not ok", uri, path)
		}
	}
}
