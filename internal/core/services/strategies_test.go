package services

import (
	"errors"
	"testing"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

func TestResolveStrategy_Auto(t *testing.T) {
	tests := []struct {
		name string
		spec domain.SeedSpec
		want domain.Strategy
	}{
		{
			name: "explicit strategy wins over seed shape",
			spec: domain.SeedSpec{Strategy: domain.StrategyDeepDive, GenreSeeds: []string{"Jazz"}},
			want: domain.StrategyDeepDive,
		},
		{
			name: "genres resolve to genre",
			spec: domain.SeedSpec{GenreSeeds: []string{"Jazz"}},
			want: domain.StrategyGenre,
		},
		{
			name: "genres beat tracks",
			spec: domain.SeedSpec{GenreSeeds: []string{"Jazz"}, SeedTrackIDs: []string{"t1"}},
			want: domain.StrategyGenre,
		},
		{
			name: "tracks resolve to sonic tracks",
			spec: domain.SeedSpec{SeedTrackIDs: []string{"t1"}},
			want: domain.StrategySonicTracksMix,
		},
		{
			name: "artists resolve to sonic artists",
			spec: domain.SeedSpec{SeedArtistNames: []string{"Slowdive"}},
			want: domain.StrategySonicArtistMix,
		},
		{
			name: "no seeds resolve to history",
			spec: domain.SeedSpec{},
			want: domain.StrategyHistorySeeds,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveStrategy(tc.spec); got != tc.want {
				t.Fatalf("resolveStrategy = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCheckMandatorySeeds(t *testing.T) {
	track := domain.TrackRef{ID: "t1"}
	artist := domain.ArtistRef{ID: "a1"}

	tests := []struct {
		name     string
		strategy domain.Strategy
		seeds    domain.SeedSpec
		set      SeedSet
		wantErr  bool
	}{
		{
			name:     "genre without genre seeds fails",
			strategy: domain.StrategyGenre,
			wantErr:  true,
		},
		{
			name:     "genre with genre seeds passes",
			strategy: domain.StrategyGenre,
			seeds:    domain.SeedSpec{GenreSeeds: []string{"Jazz"}},
		},
		{
			name:     "history needs nothing",
			strategy: domain.StrategyHistorySeeds,
		},
		{
			name:     "deep dive accepts artist seeds",
			strategy: domain.StrategyDeepDive,
			set:      SeedSet{Artists: []domain.ArtistRef{artist}},
		},
		{
			name:     "deep dive accepts track seeds",
			strategy: domain.StrategyDeepDive,
			set:      SeedSet{Tracks: []domain.TrackRef{track}},
		},
		{
			name:     "deep dive without seeds fails",
			strategy: domain.StrategyDeepDive,
			wantErr:  true,
		},
		{
			name:     "sonic tracks without tracks fails",
			strategy: domain.StrategySonicTracksMix,
			set:      SeedSet{Artists: []domain.ArtistRef{artist}},
			wantErr:  true,
		},
		{
			name:     "journey needs two waypoints",
			strategy: domain.StrategySonicJourney,
			set:      SeedSet{JourneyWaypoints: []domain.TrackRef{track}},
			wantErr:  true,
		},
		{
			name:     "journey with two waypoints passes",
			strategy: domain.StrategySonicJourney,
			set:      SeedSet{JourneyWaypoints: []domain.TrackRef{track, {ID: "t2"}}},
		},
		{
			name:     "strict collection without a name fails",
			strategy: domain.StrategyStrictCollection,
			set:      SeedSet{CollectionTracks: []domain.TrackRef{track}},
			wantErr:  true,
		},
		{
			name:     "strict collection with unresolvable name fails",
			strategy: domain.StrategyStrictCollection,
			seeds:    domain.SeedSpec{SeedCollectionNames: []string{"Favorites"}},
			wantErr:  true,
		},
		{
			name:     "strict collection with members passes",
			strategy: domain.StrategyStrictCollection,
			seeds:    domain.SeedSpec{SeedCollectionNames: []string{"Favorites"}},
			set:      SeedSet{CollectionTracks: []domain.TrackRef{track}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := checkMandatorySeeds(tc.strategy, tc.seeds, tc.set)
			if (err != nil) != tc.wantErr {
				t.Fatalf("checkMandatorySeeds = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidSeed) {
				t.Fatalf("error %v does not match ErrInvalidSeed", err)
			}
		})
	}
}
