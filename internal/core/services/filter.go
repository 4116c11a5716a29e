package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
	"github.com/ewilliams-labs/cadenza/internal/worker"
)

// filterSnapshot holds the immutable per-run lookups the pipeline needs so
// every rule is a pure function over in-memory data.
type filterSnapshot struct {
	albums      map[string]domain.AlbumRef  // keyed by album id
	artists     map[string]domain.ArtistRef // keyed by artist id
	included    map[string]bool             // track ids in any include collection
	excluded    map[string]bool             // track ids in any exclude collection
	hasIncludes bool
}

// buildFilterSnapshot prefetches album/artist refs and collection membership
// for the candidate pool. Fetches fan out bounded by the engine concurrency;
// results are keyed by id, so arrival order cannot influence filtering.
func (e *Engine) buildFilterSnapshot(ctx context.Context, tracks []domain.TrackRef, filter domain.FilterSpec) (*filterSnapshot, error) {
	snap := &filterSnapshot{
		albums:      make(map[string]domain.AlbumRef),
		artists:     make(map[string]domain.ArtistRef),
		included:    make(map[string]bool),
		excluded:    make(map[string]bool),
		hasIncludes: len(filter.IncludeCollections) > 0,
	}

	needAlbums := filter.MinAlbumRating > 0 || filter.MinYear > 0 || filter.MaxYear > 0 ||
		len(filter.ExcludeGenres) > 0 || filter.GenreStrict
	needArtists := filter.MinArtistRating > 0 || len(filter.ExcludeGenres) > 0 || filter.GenreStrict

	if needAlbums {
		albums, err := e.albumsOfTracks(ctx, tracks)
		if err != nil {
			return nil, err
		}
		for _, a := range albums {
			snap.albums[a.ID] = a
		}
	}
	if needArtists {
		byArtist := make(map[string]string)
		var order []string
		for _, t := range tracks {
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
		for _, a := range results {
			if a != nil {
				snap.artists[a.ID] = *a
			}
		}
	}

	collect := func(names []string, into map[string]bool) error {
		for _, name := range names {
			members, err := e.catalog.TracksInCollection(ctx, name)
			if err != nil {
				if errors.Is(err, ports.ErrNotFound) {
					continue
				}
				return fmt.Errorf("service: collection members %q: %w", name, err)
			}
			for _, t := range members {
				into[t.ID] = true
			}
		}
		return nil
	}
	if err := collect(filter.IncludeCollections, snap.included); err != nil {
		return nil, err
	}
	if err := collect(filter.ExcludeCollections, snap.excluded); err != nil {
		return nil, err
	}

	return snap, nil
}

// applyFilters runs the fixed-order elimination pipeline. It only drops
// tracks; input order is preserved, which the journey strategy relies on.
func applyFilters(tracks []domain.TrackRef, snap *filterSnapshot, filter domain.FilterSpec, params domain.PlaylistParams, genreSeeds []string, genreSeedDriven bool, now time.Time) []domain.TrackRef {
	kept := make([]domain.TrackRef, 0, len(tracks))
	for _, t := range tracks {
		if recentlyPlayed(t, params.ExcludePlayedDays, now) {
			continue
		}
		if !withinPlayCount(t.PlayCount, filter.MinPlayCount, filter.MaxPlayCount) {
			continue
		}
		if !passesRatingGates(t, snap, filter) {
			continue
		}
		if !withinYearAndDuration(t, snap, filter) {
			continue
		}
		if genreExcluded(t, snap, filter.ExcludeGenres) {
			continue
		}
		if snap.excluded[t.ID] {
			continue
		}
		if snap.hasIncludes && !snap.included[t.ID] {
			continue
		}
		if filter.GenreStrict && genreSeedDriven && len(genreSeeds) > 0 && !matchesGenreHierarchy(t, snap, genreSeeds) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// applyHistoryFilters is the narrower pair used for history-sourced
// sub-pools: recently-played exclusion plus the dedicated history rating and
// play-count bounds. The full FilterSpec never applies to history tracks.
func applyHistoryFilters(tracks []domain.TrackRef, filter domain.FilterSpec, params domain.PlaylistParams, now time.Time) []domain.TrackRef {
	kept := make([]domain.TrackRef, 0, len(tracks))
	for _, t := range tracks {
		if recentlyPlayed(t, params.ExcludePlayedDays, now) {
			continue
		}
		if filter.HistoryMinRating > 0 {
			if !t.Rated {
				if !filter.AllowUnratedTrack {
					continue
				}
			} else if t.Rating < filter.HistoryMinRating {
				continue
			}
		}
		if filter.HistoryMaxPlayCount != -1 && t.PlayCount > filter.HistoryMaxPlayCount {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func recentlyPlayed(t domain.TrackRef, excludeDays int, now time.Time) bool {
	if excludeDays <= 0 || t.LastPlayedAt.IsZero() {
		return false
	}
	cutoff := now.AddDate(0, 0, -excludeDays)
	return !t.LastPlayedAt.Before(cutoff)
}

func withinPlayCount(count, min, max int) bool {
	if count < min {
		return false
	}
	if max != -1 && count > max {
		return false
	}
	return true
}

// passesRatingGates checks track, then album, then artist minimums. A level
// with no configured minimum never drops; an unrated entity drops only when
// allow-unrated is off.
func passesRatingGates(t domain.TrackRef, snap *filterSnapshot, filter domain.FilterSpec) bool {
	gate := func(rating float64, rated bool, min float64, allowUnrated bool) bool {
		if min <= 0 {
			return true
		}
		if !rated {
			return allowUnrated
		}
		return rating >= min
	}

	if !gate(t.Rating, t.Rated, filter.MinTrackRating, filter.AllowUnratedTrack) {
		return false
	}
	if filter.MinAlbumRating > 0 {
		if album, ok := snap.albums[t.AlbumID]; ok {
			if !gate(album.Rating, album.Rated, filter.MinAlbumRating, filter.AllowUnratedAlbum) {
				return false
			}
		}
	}
	if filter.MinArtistRating > 0 {
		if artist, ok := snap.artists[t.ArtistID]; ok {
			if !gate(artist.Rating, artist.Rated, filter.MinArtistRating, filter.AllowUnratedArtist) {
				return false
			}
		}
	}
	return true
}

func withinYearAndDuration(t domain.TrackRef, snap *filterSnapshot, filter domain.FilterSpec) bool {
	if filter.MinYear > 0 || filter.MaxYear > 0 {
		if album, ok := snap.albums[t.AlbumID]; ok && album.Year > 0 {
			if filter.MinYear > 0 && album.Year < filter.MinYear {
				return false
			}
			if filter.MaxYear > 0 && album.Year > filter.MaxYear {
				return false
			}
		}
	}
	if filter.MinDurationSec > 0 && t.DurationSec < filter.MinDurationSec {
		return false
	}
	if filter.MaxDurationSec > 0 && t.DurationSec > filter.MaxDurationSec {
		return false
	}
	return true
}

func genreExcluded(t domain.TrackRef, snap *filterSnapshot, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	if domain.HasGenre(t.Genres, excluded) {
		return true
	}
	if album, ok := snap.albums[t.AlbumID]; ok && domain.HasGenre(album.Genres, excluded) {
		return true
	}
	if artist, ok := snap.artists[t.ArtistID]; ok && domain.HasGenre(artist.Genres, excluded) {
		return true
	}
	return false
}

// matchesGenreHierarchy implements the strict-genre precedence: the first
// level with any genre tags decides. Track tags win over album tags, album
// tags over artist tags; a level without tags defers to the next.
func matchesGenreHierarchy(t domain.TrackRef, snap *filterSnapshot, seeds []string) bool {
	if len(t.Genres) > 0 {
		return domain.HasGenre(t.Genres, seeds)
	}
	if album, ok := snap.albums[t.AlbumID]; ok && len(album.Genres) > 0 {
		return domain.HasGenre(album.Genres, seeds)
	}
	if artist, ok := snap.artists[t.ArtistID]; ok && len(artist.Genres) > 0 {
		return domain.HasGenre(artist.Genres, seeds)
	}
	return false
}
