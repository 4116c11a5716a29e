package services

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// smoothOrder reorders a finished list into a sonic gradient: a greedy
// nearest-neighbor walk that starts from the scout (the list head) and keeps
// appending the unplaced track most similar to the last placed one. Purely an
// ordering transform; the multiset of tracks is preserved exactly.
func (e *Engine) smoothOrder(ctx context.Context, tracks []domain.TrackRef) ([]domain.TrackRef, error) {
	if len(tracks) <= 2 {
		out := make([]domain.TrackRef, len(tracks))
		copy(out, tracks)
		return out, nil
	}

	unplaced := make([]domain.TrackRef, len(tracks)-1)
	copy(unplaced, tracks[1:])

	out := make([]domain.TrackRef, 0, len(tracks))
	out = append(out, tracks[0])
	last := tracks[0]

	for len(unplaced) > 0 {
		ranking, err := e.catalog.SimilarTracks(ctx, last.ID, len(tracks))
		if err != nil {
			return nil, fmt.Errorf("service: smoothing neighbors of %q: %w", last.ID, err)
		}

		idx := pickNearest(unplaced, ranking)
		last = unplaced[idx]
		out = append(out, last)
		unplaced = append(unplaced[:idx], unplaced[idx+1:]...)
	}

	return out, nil
}

// pickNearest returns the index of the unplaced track ranked highest in the
// similarity list; when none of them appear there, the walk falls back to the
// existing list order.
func pickNearest(unplaced []domain.TrackRef, ranking []domain.TrackRef) int {
	pos := make(map[string]int, len(ranking))
	for i, t := range ranking {
		pos[t.ID] = i
	}

	best := -1
	bestPos := 0
	for i, t := range unplaced {
		p, ok := pos[t.ID]
		if !ok {
			continue
		}
		if best == -1 || p < bestPos {
			best, bestPos = i, p
		}
	}
	if best == -1 {
		return 0
	}
	return best
}
