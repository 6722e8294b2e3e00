// Package ranking builds per-trade leaderboards from a deduplicated place
// set.
package ranking

import (
	"sort"

	"github.com/zurihub/places-cli/internal/model"
)

// leaderboardSize caps each ranked id list.
const leaderboardSize = 10

// Build partitions places by trade and computes three independently sorted
// views per trade, each truncated to ten ids. Total counts the whole
// partition, not the truncated lists.
func Build(placeSet map[string]model.Place) map[string]model.Leaderboard {
	partitions := make(map[string][]model.Place)
	for _, p := range placeSet {
		partitions[p.Trade] = append(partitions[p.Trade], p)
	}

	boards := make(map[string]model.Leaderboard, len(partitions))
	for trade, members := range partitions {
		boards[trade] = model.Leaderboard{
			Total:        len(members),
			TopRated:     topIDs(members, byRatingDesc),
			WorstRated:   topIDs(members, byRatingAsc),
			MostReviewed: topIDs(members, byReviewsDesc),
		}
	}
	return boards
}

// byRatingDesc orders best first; review count breaks rating ties in favor
// of more reviews.
func byRatingDesc(a, b model.Place) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ReviewCount > b.ReviewCount
}

// byRatingAsc orders worst first. The tiebreaker is still descending review
// count: at equal rating, more reviews make a place more reliably worst.
func byRatingAsc(a, b model.Place) bool {
	if a.Rating != b.Rating {
		return a.Rating < b.Rating
	}
	return a.ReviewCount > b.ReviewCount
}

func byReviewsDesc(a, b model.Place) bool {
	return a.ReviewCount > b.ReviewCount
}

func topIDs(members []model.Place, less func(a, b model.Place) bool) []string {
	sorted := make([]model.Place, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	n := len(sorted)
	if n > leaderboardSize {
		n = leaderboardSize
	}
	ids := make([]string, 0, n)
	for _, p := range sorted[:n] {
		ids = append(ids, p.ID)
	}
	return ids
}

// SortPlaces orders the full place list for presentation, best rated first
// with review count as tiebreaker. Independent of the leaderboards.
func SortPlaces(placeSet map[string]model.Place) []model.Place {
	out := make([]model.Place, 0, len(placeSet))
	for _, p := range placeSet {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return byRatingDesc(out[i], out[j]) })
	return out
}
