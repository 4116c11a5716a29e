package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// buildTitle produces the default playlist title unless the user supplied a
// custom one.
func buildTitle(strategy domain.Strategy, period, customTitle string, now time.Time) string {
	if customTitle != "" {
		return customTitle
	}
	day := now.Weekday().String()
	date := now.Format("06-01-02")
	if period != "" && period != periodAnytime {
		return fmt.Sprintf("Playlist Creator • %s • %s %s (%s)", strategy.Label(), day, period, date)
	}
	return fmt.Sprintf("Playlist Creator • %s • %s (%s)", strategy.Label(), day, date)
}

// buildDescription summarizes the selection: seed mode, the three most
// common genres and the five most frequent artists.
func buildDescription(strategy domain.Strategy, period string, tracks []domain.TrackRef, now time.Time) string {
	day := now.Weekday().String()

	genreCounts := make(map[string]int)
	artistCounts := make(map[string]int)
	for _, t := range tracks {
		for _, g := range t.Genres {
			genreCounts[g]++
		}
		if t.ArtistName != "" {
			artistCounts[t.ArtistName]++
		}
	}

	parts := []string{fmt.Sprintf("Seed mode: %s.", strategy.Label())}
	if top := topCounted(genreCounts, 3); len(top) > 0 {
		parts = append(parts, "Top genres: "+strings.Join(top, ", ")+".")
	}
	if top := topCounted(artistCounts, 5); len(top) > 0 {
		parts = append(parts, "Frequent artists: "+strings.Join(top, ", ")+".")
	}

	if period != "" && period != periodAnytime {
		parts = append(parts, fmt.Sprintf("Built for a %s session on %s.", strings.ToLower(period), day))
	} else {
		parts = append(parts, fmt.Sprintf("Built for %s listening.", day))
	}

	return strings.Join(parts, " ")
}

// topCounted returns up to n keys by descending count, ties alphabetical.
func topCounted(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
