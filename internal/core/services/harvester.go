package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
	"github.com/ewilliams-labs/cadenza/internal/worker"
)

// SeedSet is the harvest result: concrete seed entities resolved from the
// user's names and ids, deduplicated by id.
type SeedSet struct {
	Tracks  []domain.TrackRef
	Artists []domain.ArtistRef

	// JourneyWaypoints preserves the input order of the explicit seed track
	// ids. Playlist and collection unpacking does not guarantee order, so the
	// journey strategy only chains over these.
	JourneyWaypoints []domain.TrackRef

	// CollectionTracks holds only the members of the named seed collections,
	// which the strict-collection strategy is confined to.
	CollectionTracks []domain.TrackRef
}

// harvestSeeds resolves every seed source of the spec via the catalog.
// Unresolved names are logged and skipped; whether an empty result is fatal
// is the strategy resolver's call, not ours.
func (e *Engine) harvestSeeds(ctx context.Context, log zerolog.Logger, seeds domain.SeedSpec) (SeedSet, error) {
	var set SeedSet
	seenTracks := make(map[string]bool)
	seenArtists := make(map[string]bool)

	addTrack := func(t domain.TrackRef) {
		if t.ID == "" || seenTracks[t.ID] {
			return
		}
		seenTracks[t.ID] = true
		set.Tracks = append(set.Tracks, t)
	}

	// Explicit track ids, fetched concurrently but kept in input order.
	explicit := make([]*domain.TrackRef, len(seeds.SeedTrackIDs))
	g := worker.NewGroup(e.concurrency)
	var mu sync.Mutex
	for i, id := range seeds.SeedTrackIDs {
		i, id := i, id
		g.Go(ctx, func() error {
			t, err := e.catalog.TrackByID(ctx, id)
			if err != nil {
				if errors.Is(err, ports.ErrNotFound) {
					mu.Lock()
					logSkippedSeed(log, domain.SeedResolutionError{Kind: "track", Name: id})
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("service: resolve seed track %q: %w", id, err)
			}
			explicit[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedSet{}, err
	}
	for _, t := range explicit {
		if t == nil {
			continue
		}
		set.JourneyWaypoints = append(set.JourneyWaypoints, *t)
		addTrack(*t)
	}

	// Playlists and collections unpack into member tracks.
	for _, name := range seeds.SeedPlaylistNames {
		tracks, err := e.catalog.TracksInPlaylist(ctx, name)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				logSkippedSeed(log, domain.SeedResolutionError{Kind: "playlist", Name: name})
				continue
			}
			return SeedSet{}, fmt.Errorf("service: unpack seed playlist %q: %w", name, err)
		}
		for _, t := range tracks {
			addTrack(t)
		}
	}
	for _, name := range seeds.SeedCollectionNames {
		tracks, err := e.catalog.TracksInCollection(ctx, name)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				logSkippedSeed(log, domain.SeedResolutionError{Kind: "collection", Name: name})
				continue
			}
			return SeedSet{}, fmt.Errorf("service: unpack seed collection %q: %w", name, err)
		}
		for _, t := range tracks {
			set.CollectionTracks = append(set.CollectionTracks, t)
			addTrack(t)
		}
	}

	for _, name := range seeds.SeedArtistNames {
		a, err := e.catalog.ResolveArtistByName(ctx, name)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				logSkippedSeed(log, domain.SeedResolutionError{Kind: "artist", Name: name})
				continue
			}
			return SeedSet{}, fmt.Errorf("service: resolve seed artist %q: %w", name, err)
		}
		if a.ID != "" && !seenArtists[a.ID] {
			seenArtists[a.ID] = true
			set.Artists = append(set.Artists, a)
		}
	}

	return set, nil
}

// artistsFromTracks resolves the distinct artists of the seed tracks, used by
// strategies that accept either artist or track seeds.
func (e *Engine) artistsFromTracks(ctx context.Context, set SeedSet) ([]domain.ArtistRef, error) {
	if len(set.Artists) > 0 {
		return set.Artists, nil
	}

	byArtist := make(map[string]string) // artist id -> representative track id
	var order []string
	for _, t := range set.Tracks {
		if t.ArtistID == "" || byArtist[t.ArtistID] != "" {
			continue
		}
		byArtist[t.ArtistID] = t.ID
		order = append(order, t.ArtistID)
	}

	results := make([]*domain.ArtistRef, len(order))
	g := worker.NewGroup(e.concurrency)
	for i, artistID := range order {
		i, trackID := i, byArtist[artistID]
		g.Go(ctx, func() error {
			a, err := e.catalog.ArtistOfTrack(ctx, trackID)
			if err != nil {
				if errors.Is(err, ports.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("service: resolve artist of track %q: %w", trackID, err)
			}
			results[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var artists []domain.ArtistRef
	for _, a := range results {
		if a != nil {
			artists = append(artists, *a)
		}
	}
	return artists, nil
}

// albumsOfTracks resolves the distinct parent albums of the given tracks.
func (e *Engine) albumsOfTracks(ctx context.Context, tracks []domain.TrackRef) ([]domain.AlbumRef, error) {
	byAlbum := make(map[string]string) // album id -> representative track id
	var order []string
	for _, t := range tracks {
		if t.AlbumID == "" || byAlbum[t.AlbumID] != "" {
			continue
		}
		byAlbum[t.AlbumID] = t.ID
		order = append(order, t.AlbumID)
	}

	results := make([]*domain.AlbumRef, len(order))
	g := worker.NewGroup(e.concurrency)
	for i, albumID := range order {
		i, trackID := i, byAlbum[albumID]
		g.Go(ctx, func() error {
			a, err := e.catalog.AlbumOfTrack(ctx, trackID)
			if err != nil {
				if errors.Is(err, ports.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("service: resolve album of track %q: %w", trackID, err)
			}
			results[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var albums []domain.AlbumRef
	for _, a := range results {
		if a != nil {
			albums = append(albums, *a)
		}
	}
	return albums, nil
}

func logSkippedSeed(log zerolog.Logger, err domain.SeedResolutionError) {
	log.Warn().Str("kind", err.Kind).Str("name", err.Name).Msg("seed not resolved, skipping")
}
