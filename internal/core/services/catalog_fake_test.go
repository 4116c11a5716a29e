package services

import (
	"context"
	"errors"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

// fakeCatalog is an in-memory CatalogProvider. Relations are stored as id
// lists so tests control ordering exactly. It is never mutated once the
// engine starts, so concurrent fan-out reads are safe.
type fakeCatalog struct {
	tracks  map[string]domain.TrackRef
	albums  map[string]domain.AlbumRef
	artists map[string]domain.ArtistRef

	genreTracks    map[string][]string
	genreAlbums    map[string][]string
	albumTracks    map[string][]string
	similarTracks  map[string][]string
	similarArtists map[string][]string
	similarAlbums  map[string][]string
	topTracks      map[string][]string
	history        []string
	collections    map[string][]string
	playlists      map[string][]string

	failOp string // operation name that simulates a transport failure
}

var _ ports.CatalogProvider = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:         make(map[string]domain.TrackRef),
		albums:         make(map[string]domain.AlbumRef),
		artists:        make(map[string]domain.ArtistRef),
		genreTracks:    make(map[string][]string),
		genreAlbums:    make(map[string][]string),
		albumTracks:    make(map[string][]string),
		similarTracks:  make(map[string][]string),
		similarArtists: make(map[string][]string),
		similarAlbums:  make(map[string][]string),
		topTracks:      make(map[string][]string),
		collections:    make(map[string][]string),
		playlists:      make(map[string][]string),
	}
}

// addTrack stores the track and indexes it under its album and genres.
func (f *fakeCatalog) addTrack(t domain.TrackRef) {
	f.tracks[t.ID] = t
	if t.AlbumID != "" {
		f.albumTracks[t.AlbumID] = append(f.albumTracks[t.AlbumID], t.ID)
	}
	for _, g := range t.Genres {
		f.genreTracks[g] = append(f.genreTracks[g], t.ID)
	}
}

func (f *fakeCatalog) addAlbum(a domain.AlbumRef) {
	f.albums[a.ID] = a
	for _, g := range a.Genres {
		f.genreAlbums[g] = append(f.genreAlbums[g], a.ID)
	}
}

func (f *fakeCatalog) addArtist(a domain.ArtistRef) {
	f.artists[a.ID] = a
}

func (f *fakeCatalog) fail(op string) error {
	if f.failOp == op {
		return ports.CatalogUnavailableError{Op: op, Err: errors.New("connection refused")}
	}
	return nil
}

func (f *fakeCatalog) trackRefs(ids []string) []domain.TrackRef {
	out := make([]domain.TrackRef, 0, len(ids))
	for _, id := range ids {
		if t, ok := f.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeCatalog) albumRefs(ids []string) []domain.AlbumRef {
	out := make([]domain.AlbumRef, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.albums[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeCatalog) artistRefs(ids []string) []domain.ArtistRef {
	out := make([]domain.ArtistRef, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

func truncate(ids []string, n int) []string {
	if n > 0 && len(ids) > n {
		return ids[:n]
	}
	return ids
}

func (f *fakeCatalog) TrackByID(ctx context.Context, id string) (domain.TrackRef, error) {
	if err := f.fail("track_by_id"); err != nil {
		return domain.TrackRef{}, err
	}
	t, ok := f.tracks[id]
	if !ok {
		return domain.TrackRef{}, ports.ErrNotFound
	}
	return t, nil
}

func (f *fakeCatalog) TracksByGenre(ctx context.Context, genre string) ([]domain.TrackRef, error) {
	if err := f.fail("tracks_by_genre"); err != nil {
		return nil, err
	}
	return f.trackRefs(f.genreTracks[genre]), nil
}

func (f *fakeCatalog) AlbumsByGenre(ctx context.Context, genre string) ([]domain.AlbumRef, error) {
	if err := f.fail("albums_by_genre"); err != nil {
		return nil, err
	}
	return f.albumRefs(f.genreAlbums[genre]), nil
}

func (f *fakeCatalog) TracksInAlbum(ctx context.Context, albumID string) ([]domain.TrackRef, error) {
	if err := f.fail("tracks_in_album"); err != nil {
		return nil, err
	}
	return f.trackRefs(f.albumTracks[albumID]), nil
}

func (f *fakeCatalog) SimilarTracks(ctx context.Context, trackID string, n int) ([]domain.TrackRef, error) {
	if err := f.fail("similar_tracks"); err != nil {
		return nil, err
	}
	return f.trackRefs(truncate(f.similarTracks[trackID], n)), nil
}

func (f *fakeCatalog) SimilarArtists(ctx context.Context, artistID string, n int) ([]domain.ArtistRef, error) {
	if err := f.fail("similar_artists"); err != nil {
		return nil, err
	}
	return f.artistRefs(truncate(f.similarArtists[artistID], n)), nil
}

func (f *fakeCatalog) SimilarAlbums(ctx context.Context, albumID string, n int) ([]domain.AlbumRef, error) {
	if err := f.fail("similar_albums"); err != nil {
		return nil, err
	}
	return f.albumRefs(truncate(f.similarAlbums[albumID], n)), nil
}

func (f *fakeCatalog) TopTracksOfArtist(ctx context.Context, artistID string, n int) ([]domain.TrackRef, error) {
	if err := f.fail("top_tracks"); err != nil {
		return nil, err
	}
	return f.trackRefs(truncate(f.topTracks[artistID], n)), nil
}

func (f *fakeCatalog) HistoryTopTracks(ctx context.Context, lookbackDays int) ([]domain.TrackRef, error) {
	if err := f.fail("history"); err != nil {
		return nil, err
	}
	return f.trackRefs(f.history), nil
}

func (f *fakeCatalog) TracksInCollection(ctx context.Context, name string) ([]domain.TrackRef, error) {
	if err := f.fail("collection"); err != nil {
		return nil, err
	}
	ids, ok := f.collections[name]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return f.trackRefs(ids), nil
}

func (f *fakeCatalog) TracksInPlaylist(ctx context.Context, name string) ([]domain.TrackRef, error) {
	if err := f.fail("playlist"); err != nil {
		return nil, err
	}
	ids, ok := f.playlists[name]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return f.trackRefs(ids), nil
}

func (f *fakeCatalog) ResolveArtistByName(ctx context.Context, name string) (domain.ArtistRef, error) {
	if err := f.fail("resolve_artist"); err != nil {
		return domain.ArtistRef{}, err
	}
	for _, a := range f.artists {
		if a.Name == name {
			return a, nil
		}
	}
	return domain.ArtistRef{}, ports.ErrNotFound
}

func (f *fakeCatalog) AlbumOfTrack(ctx context.Context, trackID string) (domain.AlbumRef, error) {
	if err := f.fail("album_of_track"); err != nil {
		return domain.AlbumRef{}, err
	}
	t, ok := f.tracks[trackID]
	if !ok {
		return domain.AlbumRef{}, ports.ErrNotFound
	}
	a, ok := f.albums[t.AlbumID]
	if !ok {
		return domain.AlbumRef{}, ports.ErrNotFound
	}
	return a, nil
}

func (f *fakeCatalog) ArtistOfTrack(ctx context.Context, trackID string) (domain.ArtistRef, error) {
	if err := f.fail("artist_of_track"); err != nil {
		return domain.ArtistRef{}, err
	}
	t, ok := f.tracks[trackID]
	if !ok {
		return domain.ArtistRef{}, ports.ErrNotFound
	}
	a, ok := f.artists[t.ArtistID]
	if !ok {
		return domain.ArtistRef{}, ports.ErrNotFound
	}
	return a, nil
}
