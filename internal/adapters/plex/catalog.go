package plex

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

// Plex item type discriminators used by section queries.
const (
	typeArtist = "8"
	typeAlbum  = "9"
	typeTrack  = "10"
)

func (c *Client) TrackByID(ctx context.Context, id string) (domain.TrackRef, error) {
	item, err := c.fetchMetadata(ctx, "track by id", id)
	if err != nil {
		return domain.TrackRef{}, err
	}
	return toTrackRef(item), nil
}

func (c *Client) TracksByGenre(ctx context.Context, genre string) ([]domain.TrackRef, error) {
	var res metadataResponse
	q := url.Values{"type": {typeTrack}, "genre": {genre}}
	if err := c.get(ctx, "tracks by genre", "/library/sections/"+c.sectionID+"/all", q, &res); err != nil {
		return nil, err
	}
	return toTrackRefs(res.MediaContainer.Metadata), nil
}

func (c *Client) AlbumsByGenre(ctx context.Context, genre string) ([]domain.AlbumRef, error) {
	var res metadataResponse
	q := url.Values{"type": {typeAlbum}, "genre": {genre}}
	if err := c.get(ctx, "albums by genre", "/library/sections/"+c.sectionID+"/all", q, &res); err != nil {
		return nil, err
	}
	return toAlbumRefs(res.MediaContainer.Metadata), nil
}

func (c *Client) TracksInAlbum(ctx context.Context, albumID string) ([]domain.TrackRef, error) {
	var res metadataResponse
	if err := c.get(ctx, "album tracks", "/library/metadata/"+albumID+"/children", nil, &res); err != nil {
		return nil, err
	}
	return toTrackRefs(res.MediaContainer.Metadata), nil
}

// nearest queries the server's sonic similarity ranking for one item. The
// response order is the ranking and must be preserved.
func (c *Client) nearest(ctx context.Context, op, id string, n int) ([]metadataItem, error) {
	q := url.Values{"context": {"sonicallySimilar"}}
	if n > 0 {
		q.Set("limit", strconv.Itoa(n))
	}
	var res metadataResponse
	if err := c.get(ctx, op, "/library/metadata/"+id+"/nearest", q, &res); err != nil {
		return nil, err
	}
	return res.MediaContainer.Metadata, nil
}

func (c *Client) SimilarTracks(ctx context.Context, trackID string, n int) ([]domain.TrackRef, error) {
	items, err := c.nearest(ctx, "similar tracks", trackID, n)
	if err != nil {
		return nil, err
	}
	return toTrackRefs(items), nil
}

func (c *Client) SimilarArtists(ctx context.Context, artistID string, n int) ([]domain.ArtistRef, error) {
	items, err := c.nearest(ctx, "similar artists", artistID, n)
	if err != nil {
		return nil, err
	}
	return toArtistRefs(items), nil
}

func (c *Client) SimilarAlbums(ctx context.Context, albumID string, n int) ([]domain.AlbumRef, error) {
	items, err := c.nearest(ctx, "similar albums", albumID, n)
	if err != nil {
		return nil, err
	}
	return toAlbumRefs(items), nil
}

func (c *Client) TopTracksOfArtist(ctx context.Context, artistID string, n int) ([]domain.TrackRef, error) {
	q := url.Values{
		"type":      {typeTrack},
		"artist.id": {artistID},
		"sort":      {"viewCount:desc"},
	}
	if n > 0 {
		q.Set("limit", strconv.Itoa(n))
	}
	var res metadataResponse
	if err := c.get(ctx, "artist top tracks", "/library/sections/"+c.sectionID+"/all", q, &res); err != nil {
		return nil, err
	}
	return toTrackRefs(res.MediaContainer.Metadata), nil
}

// HistoryTopTracks reads the account listening history inside the lookback
// window and returns the distinct tracks ordered by play count within the
// window. History entries are thin, so the full refs come from one batched
// metadata fetch.
func (c *Client) HistoryTopTracks(ctx context.Context, lookbackDays int) ([]domain.TrackRef, error) {
	q := url.Values{"sort": {"viewedAt:desc"}}
	if lookbackDays > 0 {
		minDate := time.Now().AddDate(0, 0, -lookbackDays).Unix()
		q.Set("viewedAt>", strconv.FormatInt(minDate, 10))
	}
	var res metadataResponse
	if err := c.get(ctx, "history", "/status/sessions/history/all", q, &res); err != nil {
		return nil, err
	}

	plays := make(map[string]int)
	var order []string
	for _, m := range res.MediaContainer.Metadata {
		if m.RatingKey == "" || m.Type != "track" {
			continue
		}
		if plays[m.RatingKey] == 0 {
			order = append(order, m.RatingKey)
		}
		plays[m.RatingKey]++
	}
	if len(order) == 0 {
		return nil, nil
	}
	sort.SliceStable(order, func(i, j int) bool {
		return plays[order[i]] > plays[order[j]]
	})

	items, err := c.fetchMetadataBatch(ctx, "history tracks", order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]metadataItem, len(items))
	for _, m := range items {
		byID[m.RatingKey] = m
	}

	out := make([]domain.TrackRef, 0, len(order))
	for _, id := range order {
		if m, ok := byID[id]; ok {
			out = append(out, toTrackRef(m))
		}
	}
	return out, nil
}

func (c *Client) TracksInCollection(ctx context.Context, name string) ([]domain.TrackRef, error) {
	var res metadataResponse
	q := url.Values{"title": {name}}
	if err := c.get(ctx, "collection lookup", "/library/sections/"+c.sectionID+"/collections", q, &res); err != nil {
		return nil, err
	}
	key := ""
	for _, m := range res.MediaContainer.Metadata {
		if strings.EqualFold(m.Title, name) {
			key = m.RatingKey
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("plex adapter: collection %q: %w", name, ports.ErrNotFound)
	}

	var children metadataResponse
	if err := c.get(ctx, "collection members", "/library/collections/"+key+"/children", nil, &children); err != nil {
		return nil, err
	}

	// Track collections hold tracks directly; album collections expand to
	// member tracks.
	var tracks []domain.TrackRef
	for _, m := range children.MediaContainer.Metadata {
		switch m.Type {
		case "track":
			tracks = append(tracks, toTrackRef(m))
		case "album":
			members, err := c.TracksInAlbum(ctx, m.RatingKey)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, members...)
		}
	}
	return tracks, nil
}

func (c *Client) TracksInPlaylist(ctx context.Context, name string) ([]domain.TrackRef, error) {
	var res playlistResponse
	q := url.Values{"playlistType": {"audio"}, "title": {name}}
	if err := c.get(ctx, "playlist lookup", "/playlists", q, &res); err != nil {
		return nil, err
	}
	key := ""
	for _, p := range res.MediaContainer.Metadata {
		if strings.EqualFold(p.Title, name) {
			key = p.RatingKey
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("plex adapter: playlist %q: %w", name, ports.ErrNotFound)
	}

	var items metadataResponse
	if err := c.get(ctx, "playlist items", "/playlists/"+key+"/items", nil, &items); err != nil {
		return nil, err
	}
	return toTrackRefs(items.MediaContainer.Metadata), nil
}

func (c *Client) ResolveArtistByName(ctx context.Context, name string) (domain.ArtistRef, error) {
	var res metadataResponse
	q := url.Values{"type": {typeArtist}, "title": {name}}
	if err := c.get(ctx, "artist lookup", "/library/sections/"+c.sectionID+"/all", q, &res); err != nil {
		return domain.ArtistRef{}, err
	}
	for _, m := range res.MediaContainer.Metadata {
		if strings.EqualFold(m.Title, name) {
			return toArtistRef(m), nil
		}
	}
	return domain.ArtistRef{}, fmt.Errorf("plex adapter: artist %q: %w", name, ports.ErrNotFound)
}

func (c *Client) AlbumOfTrack(ctx context.Context, trackID string) (domain.AlbumRef, error) {
	track, err := c.fetchMetadata(ctx, "album of track", trackID)
	if err != nil {
		return domain.AlbumRef{}, err
	}
	if track.ParentRatingKey == "" {
		return domain.AlbumRef{}, fmt.Errorf("plex adapter: track %q has no album: %w", trackID, ports.ErrNotFound)
	}
	album, err := c.fetchMetadata(ctx, "album of track", track.ParentRatingKey)
	if err != nil {
		return domain.AlbumRef{}, err
	}
	return toAlbumRef(album), nil
}

func (c *Client) ArtistOfTrack(ctx context.Context, trackID string) (domain.ArtistRef, error) {
	track, err := c.fetchMetadata(ctx, "artist of track", trackID)
	if err != nil {
		return domain.ArtistRef{}, err
	}
	if track.GrandparentRatingKey == "" {
		return domain.ArtistRef{}, fmt.Errorf("plex adapter: track %q has no artist: %w", trackID, ports.ErrNotFound)
	}
	artist, err := c.fetchMetadata(ctx, "artist of track", track.GrandparentRatingKey)
	if err != nil {
		return domain.ArtistRef{}, err
	}
	return toArtistRef(artist), nil
}

// fetchMetadata loads one library item by rating key.
func (c *Client) fetchMetadata(ctx context.Context, op, id string) (metadataItem, error) {
	var res metadataResponse
	if err := c.get(ctx, op, "/library/metadata/"+id, nil, &res); err != nil {
		return metadataItem{}, err
	}
	if len(res.MediaContainer.Metadata) == 0 {
		return metadataItem{}, fmt.Errorf("plex adapter: item %q: %w", id, ports.ErrNotFound)
	}
	return res.MediaContainer.Metadata[0], nil
}

// fetchMetadataBatch loads several items in one request; Plex accepts a
// comma-separated rating key list on the metadata endpoint.
func (c *Client) fetchMetadataBatch(ctx context.Context, op string, ids []string) ([]metadataItem, error) {
	var res metadataResponse
	if err := c.get(ctx, op, "/library/metadata/"+strings.Join(ids, ","), nil, &res); err != nil {
		return nil, err
	}
	return res.MediaContainer.Metadata, nil
}
