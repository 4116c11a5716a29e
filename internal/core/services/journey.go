package services

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// journeyRankWindow is how deep into a waypoint's similarity ranking the
// pathfinder looks when steering toward it.
const journeyRankWindow = 100

// buildJourneyPath chains the waypoints in input order: starting at the
// first seed, it repeatedly hops to the neighbor of the current tail that
// sits highest in the next waypoint's similarity ranking, then lands on the
// waypoint itself. Path length tracks MaxTracks approximately; the order is
// significant and must survive downstream filtering untouched.
func (e *Engine) buildJourneyPath(ctx context.Context, run *runState) ([]domain.TrackRef, error) {
	waypoints := run.seeds.JourneyWaypoints
	segments := len(waypoints) - 1

	budget := run.params.MaxTracks / segments
	if budget < 1 {
		budget = 1
	}

	used := make(map[string]bool, len(waypoints))
	for _, w := range waypoints {
		used[w.ID] = true
	}

	path := []domain.TrackRef{waypoints[0]}
	current := waypoints[0]

	for i := 0; i < segments; i++ {
		next := waypoints[i+1]

		ranking, err := e.catalog.SimilarTracks(ctx, next.ID, journeyRankWindow)
		if err != nil {
			return nil, fmt.Errorf("service: journey ranking for %q: %w", next.ID, err)
		}
		rank := make(map[string]int, len(ranking))
		for pos, t := range ranking {
			rank[t.ID] = pos
		}

		for step := 0; step < budget-1; step++ {
			candidates, err := e.catalog.SimilarTracks(ctx, current.ID, run.params.SimilarPerSeed)
			if err != nil {
				return nil, fmt.Errorf("service: journey neighbors of %q: %w", current.ID, err)
			}

			if containsTrack(candidates, next.ID) {
				break // the waypoint is in reach, land on it
			}

			best, ok := closestToWaypoint(candidates, rank, used)
			if !ok {
				break // dead end, jump to the waypoint
			}
			used[best.ID] = true
			path = append(path, best)
			current = best
		}

		path = append(path, next)
		current = next
	}

	return path, nil
}

func containsTrack(tracks []domain.TrackRef, id string) bool {
	for _, t := range tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// closestToWaypoint picks the unused candidate with the best (lowest) rank
// toward the waypoint. Candidates absent from the ranking lose to any ranked
// one; ties break by id so concurrent fetches cannot reorder the path.
func closestToWaypoint(candidates []domain.TrackRef, rank map[string]int, used map[string]bool) (domain.TrackRef, bool) {
	const unranked = int(^uint(0) >> 1)

	var best domain.TrackRef
	bestRank := unranked
	found := false
	for _, c := range candidates {
		if used[c.ID] {
			continue
		}
		r, ok := rank[c.ID]
		if !ok {
			r = unranked
		}
		switch {
		case !found, r < bestRank, r == bestRank && c.ID < best.ID:
			best, bestRank, found = c, r, true
		}
	}
	return best, found
}
