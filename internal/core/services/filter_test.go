package services

import (
	"testing"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

var filterNow = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func emptySnapshot() *filterSnapshot {
	return &filterSnapshot{
		albums:   make(map[string]domain.AlbumRef),
		artists:  make(map[string]domain.ArtistRef),
		included: make(map[string]bool),
		excluded: make(map[string]bool),
	}
}

func passFilter() domain.FilterSpec {
	return domain.FilterSpec{MaxPlayCount: -1, HistoryMaxPlayCount: -1}
}

func ids(tracks []domain.TrackRef) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyFilters_UnboundedPlayCountNeverDrops(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "t1", PlayCount: 0},
		{ID: "t2", PlayCount: 1_000_000},
	}

	kept := applyFilters(tracks, emptySnapshot(), passFilter(), domain.PlaylistParams{MaxTracks: 10}, nil, false, filterNow)
	if !equalIDs(ids(kept), []string{"t1", "t2"}) {
		t.Fatalf("max_play_count -1 dropped tracks: kept %v", ids(kept))
	}

	bounded := passFilter()
	bounded.MaxPlayCount = 5
	kept = applyFilters(tracks, emptySnapshot(), bounded, domain.PlaylistParams{MaxTracks: 10}, nil, false, filterNow)
	if !equalIDs(ids(kept), []string{"t1"}) {
		t.Fatalf("max_play_count 5 kept %v, want [t1]", ids(kept))
	}
}

func TestApplyFilters_RecentlyPlayedWindow(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "recent", LastPlayedAt: filterNow.AddDate(0, 0, -3)},
		{ID: "old", LastPlayedAt: filterNow.AddDate(0, 0, -10)},
		{ID: "never"},
	}

	params := domain.PlaylistParams{MaxTracks: 10, ExcludePlayedDays: 7}
	kept := applyFilters(tracks, emptySnapshot(), passFilter(), params, nil, false, filterNow)
	if !equalIDs(ids(kept), []string{"old", "never"}) {
		t.Fatalf("7-day exclusion kept %v, want [old never]", ids(kept))
	}
}

func TestApplyFilters_RatingGates(t *testing.T) {
	snap := emptySnapshot()
	snap.albums["al-low"] = domain.AlbumRef{ID: "al-low", Rating: 4, Rated: true}
	snap.albums["al-high"] = domain.AlbumRef{ID: "al-high", Rating: 9, Rated: true}

	tests := []struct {
		name   string
		filter domain.FilterSpec
		track  domain.TrackRef
		want   bool
	}{
		{
			name:   "track below minimum drops",
			filter: domain.FilterSpec{MinTrackRating: 7, MaxPlayCount: -1, HistoryMaxPlayCount: -1},
			track:  domain.TrackRef{ID: "t", Rating: 6, Rated: true},
			want:   false,
		},
		{
			name:   "unrated track drops when not allowed",
			filter: domain.FilterSpec{MinTrackRating: 7, MaxPlayCount: -1, HistoryMaxPlayCount: -1},
			track:  domain.TrackRef{ID: "t"},
			want:   false,
		},
		{
			name:   "unrated track kept when allowed",
			filter: domain.FilterSpec{MinTrackRating: 7, AllowUnratedTrack: true, MaxPlayCount: -1, HistoryMaxPlayCount: -1},
			track:  domain.TrackRef{ID: "t"},
			want:   true,
		},
		{
			name:   "album gate drops by parent rating",
			filter: domain.FilterSpec{MinAlbumRating: 6, MaxPlayCount: -1, HistoryMaxPlayCount: -1},
			track:  domain.TrackRef{ID: "t", AlbumID: "al-low", Rating: 9, Rated: true},
			want:   false,
		},
		{
			name:   "album gate passes high parent",
			filter: domain.FilterSpec{MinAlbumRating: 6, MaxPlayCount: -1, HistoryMaxPlayCount: -1},
			track:  domain.TrackRef{ID: "t", AlbumID: "al-high"},
			want:   true,
		},
		{
			name:   "no minimum never drops",
			filter: passFilter(),
			track:  domain.TrackRef{ID: "t"},
			want:   true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			kept := applyFilters([]domain.TrackRef{tc.track}, snap, tc.filter, domain.PlaylistParams{MaxTracks: 10}, nil, false, filterNow)
			if got := len(kept) == 1; got != tc.want {
				t.Fatalf("kept=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyFilters_CollectionMembership(t *testing.T) {
	snap := emptySnapshot()
	snap.hasIncludes = true
	snap.included["in"] = true
	snap.excluded["both"] = true
	snap.included["both"] = true

	tracks := []domain.TrackRef{{ID: "in"}, {ID: "out"}, {ID: "both"}}
	kept := applyFilters(tracks, snap, passFilter(), domain.PlaylistParams{MaxTracks: 10}, nil, false, filterNow)
	if !equalIDs(ids(kept), []string{"in"}) {
		t.Fatalf("collection filter kept %v, want [in]", ids(kept))
	}
}

// TestMatchesGenreHierarchy verifies the precedence rule: the first level
// with any genre tags decides, lower levels are never consulted.
func TestMatchesGenreHierarchy(t *testing.T) {
	snap := emptySnapshot()
	snap.albums["al-rock"] = domain.AlbumRef{ID: "al-rock", Genres: []string{"Rock"}}
	snap.albums["al-none"] = domain.AlbumRef{ID: "al-none"}
	snap.artists["ar-jazz"] = domain.ArtistRef{ID: "ar-jazz", Genres: []string{"Jazz"}}
	snap.artists["ar-rock"] = domain.ArtistRef{ID: "ar-rock", Genres: []string{"Rock"}}

	seeds := []string{"Rock"}
	tests := []struct {
		name  string
		track domain.TrackRef
		want  bool
	}{
		{
			name:  "album decides when track has no tags",
			track: domain.TrackRef{ID: "t", AlbumID: "al-rock", ArtistID: "ar-jazz"},
			want:  true,
		},
		{
			name:  "track tags override a matching album",
			track: domain.TrackRef{ID: "t", Genres: []string{"Jazz"}, AlbumID: "al-rock"},
			want:  false,
		},
		{
			name:  "artist decides when track and album are untagged",
			track: domain.TrackRef{ID: "t", AlbumID: "al-none", ArtistID: "ar-rock"},
			want:  true,
		},
		{
			name:  "no tags anywhere is a miss",
			track: domain.TrackRef{ID: "t", AlbumID: "al-none"},
			want:  false,
		},
		{
			name:  "matching track tag wins",
			track: domain.TrackRef{ID: "t", Genres: []string{"Rock", "Shoegaze"}},
			want:  true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesGenreHierarchy(tc.track, snap, seeds); got != tc.want {
				t.Fatalf("matchesGenreHierarchy = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyFilters_GenreStrictOnlyWhenSeedDriven(t *testing.T) {
	filter := passFilter()
	filter.GenreStrict = true
	tracks := []domain.TrackRef{{ID: "t", Genres: []string{"Jazz"}}}
	seeds := []string{"Rock"}

	kept := applyFilters(tracks, emptySnapshot(), filter, domain.PlaylistParams{MaxTracks: 10}, seeds, false, filterNow)
	if len(kept) != 1 {
		t.Fatalf("strict gate applied outside a genre-driven run")
	}
	kept = applyFilters(tracks, emptySnapshot(), filter, domain.PlaylistParams{MaxTracks: 10}, seeds, true, filterNow)
	if len(kept) != 0 {
		t.Fatalf("strict gate not applied in a genre-driven run")
	}
}

func TestApplyHistoryFilters(t *testing.T) {
	filter := passFilter()
	filter.HistoryMinRating = 6
	filter.HistoryMaxPlayCount = 50
	filter.MinTrackRating = 9 // full-pool threshold, must not apply here

	tracks := []domain.TrackRef{
		{ID: "keep", Rating: 7, Rated: true, PlayCount: 10},
		{ID: "low-rating", Rating: 4, Rated: true},
		{ID: "unrated"},
		{ID: "overplayed", Rating: 8, Rated: true, PlayCount: 51},
		{ID: "recent", Rating: 8, Rated: true, LastPlayedAt: filterNow.AddDate(0, 0, -1)},
	}

	params := domain.PlaylistParams{MaxTracks: 10, ExcludePlayedDays: 7}
	kept := applyHistoryFilters(tracks, filter, params, filterNow)
	if !equalIDs(ids(kept), []string{"keep"}) {
		t.Fatalf("history filters kept %v, want [keep]", ids(kept))
	}

	filter.AllowUnratedTrack = true
	kept = applyHistoryFilters(tracks, filter, params, filterNow)
	if !equalIDs(ids(kept), []string{"keep", "unrated"}) {
		t.Fatalf("history filters with allow-unrated kept %v, want [keep unrated]", ids(kept))
	}
}

func TestApplyFilters_PreservesInputOrder(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "z"}, {ID: "a", PlayCount: 99}, {ID: "m"},
	}
	filter := passFilter()
	filter.MaxPlayCount = 10

	kept := applyFilters(tracks, emptySnapshot(), filter, domain.PlaylistParams{MaxTracks: 10}, nil, false, filterNow)
	if !equalIDs(ids(kept), []string{"z", "m"}) {
		t.Fatalf("filter reordered survivors: %v", ids(kept))
	}
}
