package services

import (
	"math/rand"
	"sort"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// halfLifeDays controls how fast the recency and date-added terms decay.
const halfLifeDays = 30.0

// scoreTracks assigns every track its selection score. Tracks are sorted by
// id before any randomness is drawn, so two runs with the same seed draw the
// same values for the same pool regardless of fetch arrival order.
func scoreTracks(tracks []domain.TrackRef, params domain.PlaylistParams, rng *rand.Rand, now time.Time) []domain.ScoredTrack {
	ordered := make([]domain.TrackRef, len(tracks))
	copy(ordered, tracks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	maxPop := 0.0
	for _, t := range ordered {
		if p := popularityProxy(t); p > maxPop {
			maxPop = p
		}
	}

	scored := make([]domain.ScoredTrack, len(ordered))
	for i, t := range ordered {
		popNorm := 0.0
		if maxPop > 0 {
			popNorm = popularityProxy(t) / maxPop
		}
		score := params.ExploreExploit*popNorm + (1-params.ExploreExploit)*rng.Float64()
		score += params.RecencyBias * recencyTerm(t, now)
		score += params.DateAddedBias * freshnessTerm(t, now)
		scored[i] = domain.ScoredTrack{Track: t, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Track.ID < scored[j].Track.ID
	})
	return scored
}

// popularityProxy is monotonic in both play count and rating and carries no
// catalog-specific meaning.
func popularityProxy(t domain.TrackRef) float64 {
	p := float64(t.PlayCount)
	if t.Rated {
		p += t.Rating
	}
	return p
}

// recencyTerm decays from 1 toward 0 with days since last play; never-played
// tracks contribute nothing.
func recencyTerm(t domain.TrackRef, now time.Time) float64 {
	if t.LastPlayedAt.IsZero() {
		return 0
	}
	days := now.Sub(t.LastPlayedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days/halfLifeDays)
}

// freshnessTerm decays from 1 toward 0 with days since the track was added.
func freshnessTerm(t domain.TrackRef, now time.Time) float64 {
	if t.AddedAt.IsZero() {
		return 0
	}
	days := now.Sub(t.AddedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days/halfLifeDays)
}

// capCounts tracks per-artist and per-album usage during distribution.
type capCounts struct {
	perArtist map[string]int
	perAlbum  map[string]int
}

func newCapCounts() *capCounts {
	return &capCounts{perArtist: make(map[string]int), perAlbum: make(map[string]int)}
}

func (c *capCounts) allows(t domain.TrackRef, maxPerArtist, maxPerAlbum int) bool {
	if maxPerArtist > 0 && c.perArtist[t.ArtistID] >= maxPerArtist {
		return false
	}
	if maxPerAlbum > 0 && c.perAlbum[t.AlbumID] >= maxPerAlbum {
		return false
	}
	return true
}

func (c *capCounts) take(t domain.TrackRef) {
	c.perArtist[t.ArtistID]++
	c.perAlbum[t.AlbumID]++
}

// distribute assembles up to limit tracks from the score-ordered candidates.
// Uncapped runs keep strict score order. Capped runs round-robin over
// distinct artists in score order, taking each artist's single best remaining
// track per pass, with album caps enforced inside every artist's allotment.
func distribute(scored []domain.ScoredTrack, limit int, params domain.PlaylistParams, counts *capCounts) []domain.ScoredTrack {
	if limit <= 0 {
		return nil
	}

	if params.MaxPerArtist == 0 && params.MaxPerAlbum == 0 {
		n := limit
		if n > len(scored) {
			n = len(scored)
		}
		out := make([]domain.ScoredTrack, n)
		copy(out, scored[:n])
		for _, st := range out {
			counts.take(st.Track)
		}
		return out
	}

	// Bucket tracks per artist, preserving score order inside each bucket.
	// Artists cycle in the order of their best track.
	buckets := make(map[string][]domain.ScoredTrack)
	var artistOrder []string
	for _, st := range scored {
		id := st.Track.ArtistID
		if _, ok := buckets[id]; !ok {
			artistOrder = append(artistOrder, id)
		}
		buckets[id] = append(buckets[id], st)
	}

	var out []domain.ScoredTrack
	for len(out) < limit {
		progressed := false
		for _, artistID := range artistOrder {
			if len(out) >= limit {
				break
			}
			if params.MaxPerArtist > 0 && counts.perArtist[artistID] >= params.MaxPerArtist {
				continue
			}
			bucket := buckets[artistID]
			for i, st := range bucket {
				if !counts.allows(st.Track, params.MaxPerArtist, params.MaxPerAlbum) {
					continue
				}
				counts.take(st.Track)
				out = append(out, st)
				buckets[artistID] = bucket[i+1:]
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

// assemble runs historical-ratio blending plus fair-share distribution and
// returns the ordered selection. historyScored may be nil for history-driven
// strategies, which never blend.
func assemble(mainScored, historyScored []domain.ScoredTrack, params domain.PlaylistParams) []domain.TrackRef {
	counts := newCapCounts()

	reserved := 0
	if len(historyScored) > 0 && params.HistoricalRatio > 0 {
		reserved = int(float64(params.MaxTracks)*params.HistoricalRatio + 0.5)
		if reserved > params.MaxTracks {
			reserved = params.MaxTracks
		}
	}

	var historyPicks []domain.ScoredTrack
	if reserved > 0 {
		historyPicks = distribute(historyScored, reserved, params, counts)
	}

	chosen := make(map[string]bool, len(historyPicks))
	for _, st := range historyPicks {
		chosen[st.Track.ID] = true
	}
	remaining := make([]domain.ScoredTrack, 0, len(mainScored))
	for _, st := range mainScored {
		if !chosen[st.Track.ID] {
			remaining = append(remaining, st)
		}
	}

	mainPicks := distribute(remaining, params.MaxTracks-len(historyPicks), params, counts)

	merged := append(historyPicks, mainPicks...)
	if params.MaxPerArtist == 0 && params.MaxPerAlbum == 0 {
		// Keep the global score ordering the uncapped contract promises.
		sort.SliceStable(merged, func(i, j int) bool {
			if merged[i].Score != merged[j].Score {
				return merged[i].Score > merged[j].Score
			}
			return merged[i].Track.ID < merged[j].Track.ID
		})
	}

	out := make([]domain.TrackRef, len(merged))
	for i, st := range merged {
		out[i] = st.Track
	}
	return out
}
