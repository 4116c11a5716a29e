package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

func TestHarvestSeeds_ExplicitTracksKeepInputOrder(t *testing.T) {
	f := newFakeCatalog()
	f.addTrack(domain.TrackRef{ID: "t3"})
	f.addTrack(domain.TrackRef{ID: "t1"})
	f.addTrack(domain.TrackRef{ID: "t2"})

	e := newTestEngine(f)
	spec := domain.SeedSpec{SeedTrackIDs: []string{"t3", "t1", "t2"}}

	set, err := e.harvestSeeds(context.Background(), zerolog.Nop(), spec)
	if err != nil {
		t.Fatalf("harvestSeeds: %v", err)
	}
	if !equalIDs(ids(set.JourneyWaypoints), []string{"t3", "t1", "t2"}) {
		t.Fatalf("waypoints = %v, want input order", ids(set.JourneyWaypoints))
	}
	if !equalIDs(ids(set.Tracks), []string{"t3", "t1", "t2"}) {
		t.Fatalf("tracks = %v, want input order", ids(set.Tracks))
	}
}

func TestHarvestSeeds_PlaylistAndCollectionUnpackWithDedupe(t *testing.T) {
	f := newFakeCatalog()
	for _, id := range []string{"t1", "t2", "t3"} {
		f.addTrack(domain.TrackRef{ID: id})
	}
	f.playlists["Morning Mix"] = []string{"t1", "t2"}
	f.collections["Keepers"] = []string{"t2", "t3"}

	e := newTestEngine(f)
	spec := domain.SeedSpec{
		SeedPlaylistNames:   []string{"Morning Mix"},
		SeedCollectionNames: []string{"Keepers"},
	}

	set, err := e.harvestSeeds(context.Background(), zerolog.Nop(), spec)
	if err != nil {
		t.Fatalf("harvestSeeds: %v", err)
	}
	if !equalIDs(ids(set.Tracks), []string{"t1", "t2", "t3"}) {
		t.Fatalf("tracks = %v, want deduplicated union", ids(set.Tracks))
	}
	if !equalIDs(ids(set.CollectionTracks), []string{"t2", "t3"}) {
		t.Fatalf("collection tracks = %v, want only collection members", ids(set.CollectionTracks))
	}
	if len(set.JourneyWaypoints) != 0 {
		t.Fatalf("unpacked tracks must not become waypoints: %v", ids(set.JourneyWaypoints))
	}
}

func TestHarvestSeeds_UnresolvableNamesAreSkipped(t *testing.T) {
	f := newFakeCatalog()
	f.addTrack(domain.TrackRef{ID: "t1"})
	f.addArtist(domain.ArtistRef{ID: "a1", Name: "Slowdive"})

	e := newTestEngine(f)
	spec := domain.SeedSpec{
		SeedTrackIDs:        []string{"t1", "ghost-track"},
		SeedArtistNames:     []string{"Slowdive", "Nobody"},
		SeedPlaylistNames:   []string{"No Such Playlist"},
		SeedCollectionNames: []string{"No Such Collection"},
	}

	set, err := e.harvestSeeds(context.Background(), zerolog.Nop(), spec)
	if err != nil {
		t.Fatalf("harvestSeeds: %v", err)
	}
	if !equalIDs(ids(set.Tracks), []string{"t1"}) {
		t.Fatalf("tracks = %v, want [t1]", ids(set.Tracks))
	}
	if len(set.Artists) != 1 || set.Artists[0].ID != "a1" {
		t.Fatalf("artists = %v, want the one resolvable artist", set.Artists)
	}
}

func TestArtistsFromTracks_FallsBackToTrackArtists(t *testing.T) {
	f := newFakeCatalog()
	f.addArtist(domain.ArtistRef{ID: "ar-1", Name: "Slowdive"})
	f.addArtist(domain.ArtistRef{ID: "ar-2", Name: "Ride"})
	f.addTrack(domain.TrackRef{ID: "t1", ArtistID: "ar-1"})
	f.addTrack(domain.TrackRef{ID: "t2", ArtistID: "ar-1"})
	f.addTrack(domain.TrackRef{ID: "t3", ArtistID: "ar-2"})

	e := newTestEngine(f)

	set := SeedSet{Tracks: f.trackRefs([]string{"t1", "t2", "t3"})}
	artists, err := e.artistsFromTracks(context.Background(), set)
	if err != nil {
		t.Fatalf("artistsFromTracks: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("got %d artists, want 2 distinct", len(artists))
	}

	// Explicit artist seeds short-circuit track resolution.
	set.Artists = []domain.ArtistRef{{ID: "ar-9"}}
	artists, err = e.artistsFromTracks(context.Background(), set)
	if err != nil {
		t.Fatalf("artistsFromTracks: %v", err)
	}
	if len(artists) != 1 || artists[0].ID != "ar-9" {
		t.Fatalf("artists = %v, want the explicit seed only", artists)
	}
}
