package playlist

import (
	"encoding/xml"
	"path/filepath"
	"strings"

	"autoplay/internal/filesystem"
)

// WPL structure based on Windows Media Player playlist format
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Title string    `xml:"title"`
	Meta  []WPLMeta `xml:"meta"`
}

type WPLMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// ParseWPL reads a .wpl file and resolves its entries against the playlist's
// directory and mediaDir.
func ParseWPL(wplPath, mediaDir string) (*Playlist, error) {
	data, err := filesystem.ReadFileWithRetry(wplPath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	var wpl WPL
	if err := xml.Unmarshal(data, &wpl); err != nil {
		return nil, err
	}

	playlist := &Playlist{
		Name: wpl.Head.Title,
		Path: wplPath,
	}

	if playlist.Name == "" {
		playlist.Name = strings.TrimSuffix(filepath.Base(wplPath), filepath.Ext(wplPath))
	}

	wplDir := filepath.Dir(wplPath)
	for _, media := range wpl.Body.Seq.Media {
		if media.Src == "" {
			continue
		}
		playlist.Items = append(playlist.Items, resolveItem(media.Src, wplDir, mediaDir))
	}

	playlist.Count = len(playlist.Items)
	return playlist, nil
}
