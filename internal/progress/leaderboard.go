// Package progress holds leaderboards, achievements, and lifetime stats.
package progress

import (
	"sort"

	"github.com/verte-zerg/combodash/internal/model"
)

// boardCapacity is the per-mode top-N size.
const boardCapacity = 10

// Board maps each mode to its best-first entry list.
type Board map[model.Mode][]model.LeaderboardEntry

// Competitive reports whether a mode posts scores. Free practice is a
// sandbox and custom rule sets are not comparable between players.
func Competitive(mode model.Mode) bool {
	switch mode {
	case model.ModeFreePractice, model.ModeCustom:
		return false
	}
	_, ok := model.ParseMode(string(mode))
	return ok
}

// Qualifies reports whether a score would enter the mode's board.
func Qualifies(board Board, mode model.Mode, score int) bool {
	if !Competitive(mode) || score <= 0 {
		return false
	}
	entries := board[mode]
	if len(entries) < boardCapacity {
		return true
	}
	return score > entries[boardCapacity-1].Score
}

// RankFor returns the 1-based insertion rank for a score, or 0 when it
// would not qualify.
func RankFor(board Board, mode model.Mode, score int) int {
	if !Qualifies(board, mode, score) {
		return 0
	}
	rank := 1
	for _, e := range board[mode] {
		// Ties rank above older entries, matching Add's recency order.
		if score >= e.Score {
			break
		}
		rank++
	}
	return rank
}

// Add inserts an entry, sorts by score descending with recency breaking
// ties, and truncates to capacity. The returned slice is the mode's new
// board.
func Add(board Board, mode model.Mode, entry model.LeaderboardEntry) []model.LeaderboardEntry {
	entries := append(append([]model.LeaderboardEntry(nil), board[mode]...), entry)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Date.After(entries[j].Date)
	})
	if len(entries) > boardCapacity {
		entries = entries[:boardCapacity]
	}
	board[mode] = entries
	return entries
}
