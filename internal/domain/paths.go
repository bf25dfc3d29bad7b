package domain

import (
	"net/url"
	"strings"
)

// ManifestPath is the library path of the album manifest
const ManifestPath = "/songs/albums.json"

// InfoPath returns the library path of a folder's info.json
func InfoPath(folder string) string {
	return joinSongs(folder, "info.json")
}

// TrackPath returns the percent-encoded library path of a track
func TrackPath(folder string, track Track) string {
	return joinSongs(folder, track)
}

// CoverPath returns the percent-encoded library path of a folder's cover image
func CoverPath(folder, cover string) string {
	return joinSongs(folder, cover)
}

func joinSongs(parts ...string) string {
	var b strings.Builder
	b.WriteString("/songs")
	for _, p := range parts {
		for _, seg := range strings.Split(p, "/") {
			b.WriteByte('/')
			b.WriteString(url.PathEscape(seg))
		}
	}
	return b.String()
}
