package domain

import "fmt"

// Strategy selects how the raw candidate pool is constructed.
type Strategy string

const (
	StrategyAuto             Strategy = ""
	StrategyGenre            Strategy = "genre"
	StrategyHistorySeeds     Strategy = "history"
	StrategyDeepDive         Strategy = "deep_dive"
	StrategySonicArtistMix   Strategy = "sonic_artist_mix"
	StrategySonicAlbumMix    Strategy = "sonic_album_mix"
	StrategySonicTracksMix   Strategy = "track_sonic"
	StrategySonicCombo       Strategy = "sonic_combo"
	StrategySonicHistory     Strategy = "sonic_history"
	StrategySonicJourney     Strategy = "sonic_journey"
	StrategyStrictCollection Strategy = "strict_collection"
)

// Label returns the human-readable name used in playlist titles.
func (s Strategy) Label() string {
	switch s {
	case StrategyGenre:
		return "Genre Mix"
	case StrategyHistorySeeds:
		return "History Mix"
	case StrategyDeepDive:
		return "Deep Dive"
	case StrategySonicArtistMix:
		return "Sonic Artists"
	case StrategySonicAlbumMix:
		return "Sonic Albums"
	case StrategySonicTracksMix:
		return "Sonic Tracks"
	case StrategySonicCombo:
		return "Sonic Combo"
	case StrategySonicHistory:
		return "Sonic History"
	case StrategySonicJourney:
		return "Sonic Journey"
	case StrategyStrictCollection:
		return "Strict Collection"
	}
	return "Mix"
}

// FallbackMode controls how a short list is topped up after filtering.
type FallbackMode string

const (
	FallbackHistory FallbackMode = "history"
	FallbackGenre   FallbackMode = "genre"
	FallbackNone    FallbackMode = "none"
)

// SeedSpec is the user's declarative intent for one run. Immutable input.
type SeedSpec struct {
	Strategy            Strategy `json:"strategy"`
	SeedTrackIDs        []string `json:"seed_track_ids"`
	SeedArtistNames     []string `json:"seed_artist_names"`
	SeedCollectionNames []string `json:"seed_collection_names"`
	SeedPlaylistNames   []string `json:"seed_playlist_names"`
	GenreSeeds          []string `json:"genre_seeds"`
}

// FilterSpec holds the elimination thresholds applied to the candidate pool.
type FilterSpec struct {
	MinTrackRating  float64 `json:"min_track_rating"`
	MinAlbumRating  float64 `json:"min_album_rating"`
	MinArtistRating float64 `json:"min_artist_rating"`

	// Per-level unrated policy: when a minimum is set for a level, an
	// unrated entity passes only if the level allows unrated.
	AllowUnratedTrack  bool `json:"allow_unrated_track"`
	AllowUnratedAlbum  bool `json:"allow_unrated_album"`
	AllowUnratedArtist bool `json:"allow_unrated_artist"`

	MinPlayCount int `json:"min_play_count"`
	MaxPlayCount int `json:"max_play_count"` // -1 means unbounded

	MinYear        int `json:"min_year"`         // 0 means unbounded
	MaxYear        int `json:"max_year"`         // 0 means unbounded
	MinDurationSec int `json:"min_duration_sec"` // 0 means unbounded
	MaxDurationSec int `json:"max_duration_sec"` // 0 means unbounded

	IncludeCollections []string `json:"include_collections"`
	ExcludeCollections []string `json:"exclude_collections"`
	ExcludeGenres      []string `json:"exclude_genres"`
	GenreStrict        bool     `json:"genre_strict"`

	// Narrower pair applied to history-sourced sub-pools instead of the
	// thresholds above.
	HistoryMinRating    float64 `json:"history_min_rating"`
	HistoryMaxPlayCount int     `json:"history_max_play_count"` // -1 means unbounded
}

// PlaylistParams holds the sizing, scoring and distribution knobs for one run.
type PlaylistParams struct {
	MaxTracks               int          `json:"max_tracks"`
	SimilarPerSeed          int          `json:"similar_per_seed"`
	DeepDiveTargetPerArtist int          `json:"deep_dive_target_per_artist"`
	HistoricalRatio         float64      `json:"historical_ratio"`      // 0.0-1.0
	ExploreExploit          float64      `json:"explore_exploit"`       // 0 shuffle .. 1 strict ranking
	RecencyBias             float64      `json:"recency_bias"`          // 0.0-1.0
	DateAddedBias           float64      `json:"date_added_bias"`       // 0.0-1.0
	MaxPerArtist            int          `json:"max_per_artist"`        // 0 means uncapped
	MaxPerAlbum             int          `json:"max_per_album"`         // 0 means uncapped
	ExcludePlayedDays       int          `json:"exclude_played_days"`   // 0 disables
	HistoryLookbackDays     int          `json:"history_lookback_days"`
	FallbackMode            FallbackMode `json:"fallback_mode"`
	SonicSmoothing          bool         `json:"sonic_smoothing"`
	UseTimePeriods          bool         `json:"use_time_periods"`
	CustomTitle             string       `json:"custom_title,omitempty"`
}

// Validate rejects out-of-range numeric inputs before the pipeline runs.
// No silent clamping: a bad value fails the whole run at the boundary.
func (p PlaylistParams) Validate() error {
	if p.MaxTracks <= 0 {
		return fmt.Errorf("%w: max_tracks must be positive, got %d", ErrInvalidParams, p.MaxTracks)
	}
	if p.SimilarPerSeed < 0 {
		return fmt.Errorf("%w: similar_per_seed must not be negative, got %d", ErrInvalidParams, p.SimilarPerSeed)
	}
	if p.DeepDiveTargetPerArtist < 0 {
		return fmt.Errorf("%w: deep_dive_target_per_artist must not be negative, got %d", ErrInvalidParams, p.DeepDiveTargetPerArtist)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"historical_ratio", p.HistoricalRatio},
		{"explore_exploit", p.ExploreExploit},
		{"recency_bias", p.RecencyBias},
		{"date_added_bias", p.DateAddedBias},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %g", ErrInvalidParams, f.name, f.value)
		}
	}
	if p.MaxPerArtist < 0 || p.MaxPerAlbum < 0 {
		return fmt.Errorf("%w: per-artist/per-album caps must not be negative", ErrInvalidParams)
	}
	if p.ExcludePlayedDays < 0 {
		return fmt.Errorf("%w: exclude_played_days must not be negative, got %d", ErrInvalidParams, p.ExcludePlayedDays)
	}
	if p.HistoryLookbackDays < 0 {
		return fmt.Errorf("%w: history_lookback_days must not be negative, got %d", ErrInvalidParams, p.HistoryLookbackDays)
	}
	switch p.FallbackMode {
	case FallbackHistory, FallbackGenre, FallbackNone, "":
	default:
		return fmt.Errorf("%w: unknown fallback_mode %q", ErrInvalidParams, p.FallbackMode)
	}
	return nil
}

// Validate rejects filter bounds that no track could ever satisfy.
func (f FilterSpec) Validate() error {
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"min_track_rating", f.MinTrackRating},
		{"min_album_rating", f.MinAlbumRating},
		{"min_artist_rating", f.MinArtistRating},
		{"history_min_rating", f.HistoryMinRating},
	} {
		if r.value < 0 || r.value > 10 {
			return fmt.Errorf("%w: %s must be within [0,10], got %g", ErrInvalidParams, r.name, r.value)
		}
	}
	if f.MinPlayCount < 0 {
		return fmt.Errorf("%w: min_play_count must not be negative, got %d", ErrInvalidParams, f.MinPlayCount)
	}
	if f.MaxPlayCount < -1 {
		return fmt.Errorf("%w: max_play_count must be -1 or above, got %d", ErrInvalidParams, f.MaxPlayCount)
	}
	if f.HistoryMaxPlayCount < -1 {
		return fmt.Errorf("%w: history_max_play_count must be -1 or above, got %d", ErrInvalidParams, f.HistoryMaxPlayCount)
	}
	if f.MinYear < 0 || f.MaxYear < 0 || f.MinDurationSec < 0 || f.MaxDurationSec < 0 {
		return fmt.Errorf("%w: year and duration bounds must not be negative", ErrInvalidParams)
	}
	return nil
}
