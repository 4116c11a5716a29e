package domain

import "time"

// TrackRef is an immutable snapshot of a catalog track, fetched once per run.
type TrackRef struct {
	ID           string
	Title        string
	ArtistID     string
	ArtistName   string
	AlbumID      string
	DurationSec  int
	AddedAt      time.Time
	LastPlayedAt time.Time // zero value means never played
	PlayCount    int
	Rating       float64 // 0-10 scale
	Rated        bool    // false means unrated, regardless of Rating
	Genres       []string
}

// AlbumRef is an immutable snapshot of a catalog album.
type AlbumRef struct {
	ID       string
	Title    string
	ArtistID string
	Year     int // 0 means unknown
	Rating   float64
	Rated    bool
	Genres   []string
}

// ArtistRef is an immutable snapshot of a catalog artist.
type ArtistRef struct {
	ID     string
	Name   string
	Rating float64
	Rated  bool
	Genres []string
}

// HasGenre reports whether any genre in set matches any of the wanted genres.
// Matching is exact; the catalog supplies canonical tag strings.
func HasGenre(set []string, wanted []string) bool {
	for _, g := range set {
		for _, w := range wanted {
			if g == w {
				return true
			}
		}
	}
	return false
}
