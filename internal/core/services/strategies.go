package services

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/worker"
)

// Pool stage labels, recorded as provenance for diagnostics.
const (
	stageSeeds        = "seeds"
	stageGenre        = "genre"
	stageGenreAlbums  = "genre_albums"
	stageHistory      = "history"
	stageDeepDive     = "deep_dive"
	stageSonicArtists = "sonic_artists"
	stageSonicAlbums  = "sonic_albums"
	stageSonicTracks  = "sonic_tracks"
	stageCollection   = "collection"
)

// resolveStrategy pins Auto to a concrete strategy from the seed shape.
func resolveStrategy(seeds domain.SeedSpec) domain.Strategy {
	if seeds.Strategy != domain.StrategyAuto {
		return seeds.Strategy
	}
	switch {
	case len(seeds.GenreSeeds) > 0:
		return domain.StrategyGenre
	case len(seeds.SeedTrackIDs) > 0:
		return domain.StrategySonicTracksMix
	case len(seeds.SeedArtistNames) > 0:
		return domain.StrategySonicArtistMix
	default:
		return domain.StrategyHistorySeeds
	}
}

// checkMandatorySeeds enforces each strategy's mandatory input after
// harvesting, so unresolved names that emptied a required set fail here.
func checkMandatorySeeds(strategy domain.Strategy, seeds domain.SeedSpec, set SeedSet) error {
	switch strategy {
	case domain.StrategyGenre:
		if len(seeds.GenreSeeds) == 0 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "at least one genre seed"}
		}
	case domain.StrategyHistorySeeds:
		// Degrades to pure history with no seeds at all.
	case domain.StrategyDeepDive, domain.StrategySonicArtistMix, domain.StrategySonicCombo:
		if len(set.Artists) == 0 && len(set.Tracks) == 0 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "seed artists or seed tracks"}
		}
	case domain.StrategySonicAlbumMix, domain.StrategySonicTracksMix, domain.StrategySonicHistory:
		if len(set.Tracks) == 0 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "seed tracks"}
		}
	case domain.StrategySonicJourney:
		if len(set.JourneyWaypoints) < 2 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "at least two seed tracks"}
		}
	case domain.StrategyStrictCollection:
		if len(seeds.SeedCollectionNames) == 0 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "a seed collection"}
		}
		if len(set.CollectionTracks) == 0 {
			return domain.InvalidSeedError{Strategy: strategy, Reason: "a resolvable seed collection"}
		}
	default:
		return domain.InvalidSeedError{Strategy: strategy, Reason: "a known strategy"}
	}
	return nil
}

// buildPool constructs the raw candidate pool for every strategy except
// Sonic Journey, which produces an order-significant path instead.
func (e *Engine) buildPool(ctx context.Context, run *runState) (*domain.CandidatePool, error) {
	pool := domain.NewPool()

	switch run.strategy {
	case domain.StrategyGenre:
		if err := e.genrePool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategyHistorySeeds:
		// Only the seeds, appended below. The history sub-pool joins after
		// the full filter pass; it is gated by the history pair alone.
	case domain.StrategyDeepDive:
		if err := e.deepDivePool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategySonicArtistMix:
		if err := e.sonicArtistPool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategySonicAlbumMix:
		if err := e.sonicAlbumPool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategySonicTracksMix:
		if err := e.sonicTracksPool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategySonicCombo:
		if err := e.sonicArtistPool(ctx, run, pool); err != nil {
			return nil, err
		}
		if err := e.sonicAlbumPool(ctx, run, pool); err != nil {
			return nil, err
		}
		if err := e.sonicTracksPool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategySonicHistory:
		if err := e.sonicHistoryPool(ctx, run, pool); err != nil {
			return nil, err
		}
	case domain.StrategyStrictCollection:
		pool.AddAll(run.seeds.CollectionTracks, stageCollection)
	default:
		return nil, domain.InvalidSeedError{Strategy: run.strategy, Reason: "a known strategy"}
	}

	// The original seeds stay eligible alongside any expansion.
	if run.strategy != domain.StrategyStrictCollection && run.strategy != domain.StrategySonicHistory {
		pool.AddAll(run.seeds.Tracks, stageSeeds)
	}

	return pool, nil
}

// genrePool searches tracks by genre tag; when the direct hits fall short of
// the playlist size it widens to album-level genre search and expands member
// tracks.
func (e *Engine) genrePool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	direct := make([][]domain.TrackRef, len(run.spec.GenreSeeds))
	g := worker.NewGroup(e.concurrency)
	for i, genre := range run.spec.GenreSeeds {
		i, genre := i, genre
		g.Go(ctx, func() error {
			tracks, err := e.catalog.TracksByGenre(ctx, genre)
			if err != nil {
				return fmt.Errorf("service: genre search %q: %w", genre, err)
			}
			direct[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, tracks := range direct {
		pool.AddAll(tracks, stageGenre)
	}

	if pool.Len() >= run.params.MaxTracks {
		return nil
	}

	// Album-level fallback.
	albums := make([][]domain.AlbumRef, len(run.spec.GenreSeeds))
	g = worker.NewGroup(e.concurrency)
	for i, genre := range run.spec.GenreSeeds {
		i, genre := i, genre
		g.Go(ctx, func() error {
			res, err := e.catalog.AlbumsByGenre(ctx, genre)
			if err != nil {
				return fmt.Errorf("service: album genre search %q: %w", genre, err)
			}
			albums[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var flat []domain.AlbumRef
	seen := make(map[string]bool)
	for _, res := range albums {
		for _, a := range res {
			if a.ID == "" || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			flat = append(flat, a)
		}
	}
	members, err := e.tracksOfAlbums(ctx, flat)
	if err != nil {
		return err
	}
	pool.AddAll(members, stageGenreAlbums)
	return nil
}

// deepDivePool harvests up to deepDiveTargetPerArtist top tracks per seed
// artist to discover their albums, then pulls every sibling track of each
// discovered album.
func (e *Engine) deepDivePool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	artists, err := e.artistsFromTracks(ctx, run.seeds)
	if err != nil {
		return err
	}

	top := make([][]domain.TrackRef, len(artists))
	g := worker.NewGroup(e.concurrency)
	for i, a := range artists {
		i, a := i, a
		g.Go(ctx, func() error {
			tracks, err := e.catalog.TopTracksOfArtist(ctx, a.ID, run.params.DeepDiveTargetPerArtist)
			if err != nil {
				return fmt.Errorf("service: top tracks of artist %q: %w", a.ID, err)
			}
			top[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var discovered []domain.TrackRef
	for _, tracks := range top {
		discovered = append(discovered, tracks...)
	}
	discovered = append(discovered, run.seeds.Tracks...)

	albums, err := e.albumsOfTracks(ctx, discovered)
	if err != nil {
		return err
	}
	members, err := e.tracksOfAlbums(ctx, albums)
	if err != nil {
		return err
	}
	pool.AddAll(members, stageDeepDive)
	return nil
}

// sonicArtistPool expands seed artists via similar artists and takes the top
// tracks of every artist in the widened set.
func (e *Engine) sonicArtistPool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	seedArtists, err := e.artistsFromTracks(ctx, run.seeds)
	if err != nil {
		return err
	}

	similar := make([][]domain.ArtistRef, len(seedArtists))
	g := worker.NewGroup(e.concurrency)
	for i, a := range seedArtists {
		i, a := i, a
		g.Go(ctx, func() error {
			res, err := e.catalog.SimilarArtists(ctx, a.ID, run.params.SimilarPerSeed)
			if err != nil {
				return fmt.Errorf("service: similar artists of %q: %w", a.ID, err)
			}
			similar[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	all := make([]domain.ArtistRef, 0, len(seedArtists))
	seen := make(map[string]bool)
	for _, a := range seedArtists {
		if !seen[a.ID] {
			seen[a.ID] = true
			all = append(all, a)
		}
	}
	for _, res := range similar {
		for _, a := range res {
			if a.ID != "" && !seen[a.ID] {
				seen[a.ID] = true
				all = append(all, a)
			}
		}
	}

	top := make([][]domain.TrackRef, len(all))
	g = worker.NewGroup(e.concurrency)
	for i, a := range all {
		i, a := i, a
		g.Go(ctx, func() error {
			tracks, err := e.catalog.TopTracksOfArtist(ctx, a.ID, run.params.SimilarPerSeed)
			if err != nil {
				return fmt.Errorf("service: top tracks of artist %q: %w", a.ID, err)
			}
			top[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, tracks := range top {
		pool.AddAll(tracks, stageSonicArtists)
	}
	return nil
}

// sonicAlbumPool resolves the parent albums of the seed tracks, widens via
// similar albums, and collects their member tracks.
func (e *Engine) sonicAlbumPool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	seedAlbums, err := e.albumsOfTracks(ctx, run.seeds.Tracks)
	if err != nil {
		return err
	}

	similar := make([][]domain.AlbumRef, len(seedAlbums))
	g := worker.NewGroup(e.concurrency)
	for i, a := range seedAlbums {
		i, a := i, a
		g.Go(ctx, func() error {
			res, err := e.catalog.SimilarAlbums(ctx, a.ID, run.params.SimilarPerSeed)
			if err != nil {
				return fmt.Errorf("service: similar albums of %q: %w", a.ID, err)
			}
			similar[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	all := make([]domain.AlbumRef, 0, len(seedAlbums))
	seen := make(map[string]bool)
	for _, a := range seedAlbums {
		if !seen[a.ID] {
			seen[a.ID] = true
			all = append(all, a)
		}
	}
	for _, res := range similar {
		for _, a := range res {
			if a.ID != "" && !seen[a.ID] {
				seen[a.ID] = true
				all = append(all, a)
			}
		}
	}

	members, err := e.tracksOfAlbums(ctx, all)
	if err != nil {
		return err
	}
	pool.AddAll(members, stageSonicAlbums)
	return nil
}

// sonicTracksPool queries track-to-track similarity for every seed track.
func (e *Engine) sonicTracksPool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	similar := make([][]domain.TrackRef, len(run.seeds.Tracks))
	g := worker.NewGroup(e.concurrency)
	for i, t := range run.seeds.Tracks {
		i, t := i, t
		g.Go(ctx, func() error {
			res, err := e.catalog.SimilarTracks(ctx, t.ID, run.params.SimilarPerSeed)
			if err != nil {
				return fmt.Errorf("service: similar tracks of %q: %w", t.ID, err)
			}
			similar[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, res := range similar {
		pool.AddAll(res, stageSonicTracks)
	}
	return nil
}

// sonicHistoryPool intersects the history window with the sonic expansion of
// the seed tracks, by track id.
func (e *Engine) sonicHistoryPool(ctx context.Context, run *runState, pool *domain.CandidatePool) error {
	sonic := domain.NewPool()
	if err := e.sonicTracksPool(ctx, run, sonic); err != nil {
		return err
	}
	for _, t := range run.history {
		if sonic.Contains(t.ID) {
			pool.Add(t, stageHistory)
		}
	}
	return nil
}

// tracksOfAlbums fetches the member tracks of every album concurrently.
func (e *Engine) tracksOfAlbums(ctx context.Context, albums []domain.AlbumRef) ([]domain.TrackRef, error) {
	results := make([][]domain.TrackRef, len(albums))
	g := worker.NewGroup(e.concurrency)
	for i, a := range albums {
		i, a := i, a
		g.Go(ctx, func() error {
			tracks, err := e.catalog.TracksInAlbum(ctx, a.ID)
			if err != nil {
				return fmt.Errorf("service: tracks of album %q: %w", a.ID, err)
			}
			results[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []domain.TrackRef
	for _, tracks := range results {
		flat = append(flat, tracks...)
	}
	return flat, nil
}
