package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

var scoreNow = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func scoredIDs(scored []domain.ScoredTrack) []string {
	out := make([]string, len(scored))
	for i, st := range scored {
		out[i] = st.Track.ID
	}
	return out
}

func TestScoreTracks_PureExploitFollowsPopularity(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "mid", PlayCount: 10},
		{ID: "top", PlayCount: 40, Rating: 9, Rated: true},
		{ID: "low", PlayCount: 1},
	}
	params := domain.PlaylistParams{MaxTracks: 10, ExploreExploit: 1.0}

	scored := scoreTracks(tracks, params, rand.New(rand.NewSource(1)), scoreNow)
	if got := scoredIDs(scored); !equalIDs(got, []string{"top", "mid", "low"}) {
		t.Fatalf("pure exploit order = %v, want [top mid low]", got)
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("scores increase at %d: %v", i, scored)
		}
	}
}

func TestScoreTracks_DeterministicForFixedSeed(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "a", PlayCount: 3}, {ID: "b", PlayCount: 3}, {ID: "c", PlayCount: 3},
		{ID: "d"}, {ID: "e"}, {ID: "f"},
	}
	params := domain.PlaylistParams{MaxTracks: 10, ExploreExploit: 0.3}

	first := scoreTracks(tracks, params, rand.New(rand.NewSource(7)), scoreNow)

	// Same pool in a different arrival order must score identically.
	shuffled := []domain.TrackRef{tracks[4], tracks[1], tracks[5], tracks[0], tracks[3], tracks[2]}
	second := scoreTracks(shuffled, params, rand.New(rand.NewSource(7)), scoreNow)

	if !equalIDs(scoredIDs(first), scoredIDs(second)) {
		t.Fatalf("same seed produced different orders: %v vs %v", scoredIDs(first), scoredIDs(second))
	}
}

func TestScoreTracks_RecencyBiasLiftsRecentPlays(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "stale", PlayCount: 5, LastPlayedAt: scoreNow.AddDate(0, 0, -300)},
		{ID: "fresh", PlayCount: 5, LastPlayedAt: scoreNow.AddDate(0, 0, -1)},
	}
	params := domain.PlaylistParams{MaxTracks: 10, ExploreExploit: 1.0, RecencyBias: 0.5}

	scored := scoreTracks(tracks, params, rand.New(rand.NewSource(1)), scoreNow)
	if scored[0].Track.ID != "fresh" {
		t.Fatalf("recency bias did not lift the recent track: %v", scoredIDs(scored))
	}
}

func TestScoreTracks_DateAddedBiasLiftsNewArrivals(t *testing.T) {
	tracks := []domain.TrackRef{
		{ID: "old", PlayCount: 5, AddedAt: scoreNow.AddDate(-2, 0, 0)},
		{ID: "new", PlayCount: 5, AddedAt: scoreNow.AddDate(0, 0, -2)},
	}
	params := domain.PlaylistParams{MaxTracks: 10, ExploreExploit: 1.0, DateAddedBias: 0.5}

	scored := scoreTracks(tracks, params, rand.New(rand.NewSource(1)), scoreNow)
	if scored[0].Track.ID != "new" {
		t.Fatalf("date-added bias did not lift the new arrival: %v", scoredIDs(scored))
	}
}

func TestDistribute_UncappedKeepsScoreOrder(t *testing.T) {
	scored := []domain.ScoredTrack{
		{Track: domain.TrackRef{ID: "a", ArtistID: "x"}, Score: 0.9},
		{Track: domain.TrackRef{ID: "b", ArtistID: "x"}, Score: 0.8},
		{Track: domain.TrackRef{ID: "c", ArtistID: "x"}, Score: 0.7},
	}
	params := domain.PlaylistParams{MaxTracks: 2}

	out := distribute(scored, 2, params, newCapCounts())
	if !equalIDs(scoredIDs(out), []string{"a", "b"}) {
		t.Fatalf("uncapped distribute = %v, want [a b]", scoredIDs(out))
	}
}

func TestDistribute_PerArtistCap(t *testing.T) {
	scored := []domain.ScoredTrack{
		{Track: domain.TrackRef{ID: "x1", ArtistID: "x"}, Score: 0.9},
		{Track: domain.TrackRef{ID: "x2", ArtistID: "x"}, Score: 0.8},
		{Track: domain.TrackRef{ID: "x3", ArtistID: "x"}, Score: 0.7},
		{Track: domain.TrackRef{ID: "y1", ArtistID: "y"}, Score: 0.6},
		{Track: domain.TrackRef{ID: "y2", ArtistID: "y"}, Score: 0.5},
		{Track: domain.TrackRef{ID: "z1", ArtistID: "z"}, Score: 0.4},
	}
	params := domain.PlaylistParams{MaxTracks: 6, MaxPerArtist: 2}

	out := distribute(scored, 6, params, newCapCounts())

	perArtist := make(map[string]int)
	for _, st := range out {
		perArtist[st.Track.ArtistID]++
	}
	for artist, n := range perArtist {
		if n > 2 {
			t.Fatalf("artist %q has %d tracks, cap is 2", artist, n)
		}
	}
	if len(out) != 5 {
		t.Fatalf("got %d tracks, want 5 (2+2+1)", len(out))
	}
	// Round-robin: first pass takes every artist's best track.
	if got := scoredIDs(out[:3]); !equalIDs(got, []string{"x1", "y1", "z1"}) {
		t.Fatalf("first round-robin pass = %v, want [x1 y1 z1]", got)
	}
}

func TestDistribute_PerAlbumCapInsideArtist(t *testing.T) {
	scored := []domain.ScoredTrack{
		{Track: domain.TrackRef{ID: "a1", ArtistID: "x", AlbumID: "al"}, Score: 0.9},
		{Track: domain.TrackRef{ID: "a2", ArtistID: "x", AlbumID: "al"}, Score: 0.8},
		{Track: domain.TrackRef{ID: "b1", ArtistID: "x", AlbumID: "bl"}, Score: 0.7},
	}
	params := domain.PlaylistParams{MaxTracks: 3, MaxPerAlbum: 1}

	out := distribute(scored, 3, params, newCapCounts())
	if !equalIDs(scoredIDs(out), []string{"a1", "b1"}) {
		t.Fatalf("album cap selection = %v, want [a1 b1]", scoredIDs(out))
	}
}

func TestAssemble_HistoricalRatioReservation(t *testing.T) {
	var main, history []domain.ScoredTrack
	for _, id := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"} {
		main = append(main, domain.ScoredTrack{Track: domain.TrackRef{ID: id}, Score: 0.5})
	}
	for _, id := range []string{"h1", "h2", "h3", "h4"} {
		history = append(history, domain.ScoredTrack{Track: domain.TrackRef{ID: id}, Score: 0.9})
	}

	params := domain.PlaylistParams{MaxTracks: 10, HistoricalRatio: 0.3}
	out := assemble(main, history, params)

	if len(out) != 10 {
		t.Fatalf("assembled %d tracks, want 10", len(out))
	}
	fromHistory := 0
	for _, tr := range out {
		if tr.ID[0] == 'h' {
			fromHistory++
		}
	}
	if fromHistory != 3 {
		t.Fatalf("history reservation filled %d slots, want 3", fromHistory)
	}
}

func TestAssemble_SkipsHistoryDuplicatesInMainPool(t *testing.T) {
	shared := domain.TrackRef{ID: "shared"}
	main := []domain.ScoredTrack{
		{Track: shared, Score: 0.9},
		{Track: domain.TrackRef{ID: "m1"}, Score: 0.8},
		{Track: domain.TrackRef{ID: "m2"}, Score: 0.7},
	}
	history := []domain.ScoredTrack{{Track: shared, Score: 0.95}}

	params := domain.PlaylistParams{MaxTracks: 3, HistoricalRatio: 0.34}
	out := assemble(main, history, params)

	seen := make(map[string]int)
	for _, tr := range out {
		seen[tr.ID]++
	}
	if seen["shared"] != 1 {
		t.Fatalf("shared track appears %d times", seen["shared"])
	}
	if len(out) != 3 {
		t.Fatalf("assembled %d tracks, want 3", len(out))
	}
}

func TestAssemble_NoHistoryMeansNoReservation(t *testing.T) {
	main := []domain.ScoredTrack{
		{Track: domain.TrackRef{ID: "m1"}, Score: 0.9},
		{Track: domain.TrackRef{ID: "m2"}, Score: 0.8},
	}
	params := domain.PlaylistParams{MaxTracks: 5, HistoricalRatio: 0.5}

	out := assemble(main, nil, params)
	if len(out) != 2 {
		t.Fatalf("assembled %d tracks, want 2", len(out))
	}
	if out[0].ID != "m1" || out[1].ID != "m2" {
		t.Fatalf("unexpected order %v", out)
	}
}
