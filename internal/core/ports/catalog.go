package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// ErrCatalogUnavailable indicates a transport-level catalog failure. Fatal
// for the run; the caller may retry the whole run.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ErrNotFound indicates a catalog entity that does not exist.
var ErrNotFound = errors.New("not found")

// CatalogUnavailableError carries the failing operation for a user-actionable
// message at the boundary.
type CatalogUnavailableError struct {
	Op  string
	Err error
}

func (e CatalogUnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable during %s: %v", e.Op, e.Err)
}

func (e CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

func (e CatalogUnavailableError) Unwrap() error {
	return e.Err
}

// CatalogProvider is the engine's read-only view of the remote music catalog.
// Sonic similarity, play history and genre tags are computed by the catalog;
// the engine only queries them.
type CatalogProvider interface {
	TrackByID(ctx context.Context, id string) (domain.TrackRef, error)
	TracksByGenre(ctx context.Context, genre string) ([]domain.TrackRef, error)
	AlbumsByGenre(ctx context.Context, genre string) ([]domain.AlbumRef, error)
	TracksInAlbum(ctx context.Context, albumID string) ([]domain.TrackRef, error)
	SimilarTracks(ctx context.Context, trackID string, n int) ([]domain.TrackRef, error)
	SimilarArtists(ctx context.Context, artistID string, n int) ([]domain.ArtistRef, error)
	SimilarAlbums(ctx context.Context, albumID string, n int) ([]domain.AlbumRef, error)
	TopTracksOfArtist(ctx context.Context, artistID string, n int) ([]domain.TrackRef, error)
	HistoryTopTracks(ctx context.Context, lookbackDays int) ([]domain.TrackRef, error)
	TracksInCollection(ctx context.Context, name string) ([]domain.TrackRef, error)
	TracksInPlaylist(ctx context.Context, name string) ([]domain.TrackRef, error)
	ResolveArtistByName(ctx context.Context, name string) (domain.ArtistRef, error)
	AlbumOfTrack(ctx context.Context, trackID string) (domain.AlbumRef, error)
	ArtistOfTrack(ctx context.Context, trackID string) (domain.ArtistRef, error)
}
