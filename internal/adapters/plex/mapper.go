package plex

import (
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// toTrackRef converts a Plex track item into the engine's snapshot type.
// Plex reports durations in milliseconds and timestamps as unix seconds.
func toTrackRef(m metadataItem) domain.TrackRef {
	t := domain.TrackRef{
		ID:          m.RatingKey,
		Title:       m.Title,
		ArtistID:    m.GrandparentRatingKey,
		ArtistName:  m.GrandparentTitle,
		AlbumID:     m.ParentRatingKey,
		DurationSec: int(m.Duration / 1000),
		PlayCount:   m.ViewCount,
		Genres:      tagNames(m.Genre),
	}
	if m.AddedAt > 0 {
		t.AddedAt = time.Unix(m.AddedAt, 0).UTC()
	}
	if m.LastViewedAt > 0 {
		t.LastPlayedAt = time.Unix(m.LastViewedAt, 0).UTC()
	}
	if m.UserRating != nil {
		t.Rating = *m.UserRating
		t.Rated = true
	}
	return t
}

func toAlbumRef(m metadataItem) domain.AlbumRef {
	a := domain.AlbumRef{
		ID:       m.RatingKey,
		Title:    m.Title,
		ArtistID: m.ParentRatingKey,
		Year:     m.Year,
		Genres:   tagNames(m.Genre),
	}
	if m.UserRating != nil {
		a.Rating = *m.UserRating
		a.Rated = true
	}
	return a
}

func toArtistRef(m metadataItem) domain.ArtistRef {
	a := domain.ArtistRef{
		ID:     m.RatingKey,
		Name:   m.Title,
		Genres: tagNames(m.Genre),
	}
	if m.UserRating != nil {
		a.Rating = *m.UserRating
		a.Rated = true
	}
	return a
}

func toTrackRefs(items []metadataItem) []domain.TrackRef {
	out := make([]domain.TrackRef, 0, len(items))
	for _, m := range items {
		out = append(out, toTrackRef(m))
	}
	return out
}

func toAlbumRefs(items []metadataItem) []domain.AlbumRef {
	out := make([]domain.AlbumRef, 0, len(items))
	for _, m := range items {
		out = append(out, toAlbumRef(m))
	}
	return out
}

func toArtistRefs(items []metadataItem) []domain.ArtistRef {
	out := make([]domain.ArtistRef, 0, len(items))
	for _, m := range items {
		out = append(out, toArtistRef(m))
	}
	return out
}
