package app

import (
	"context"
	"sort"

	"golang.org/x/sync/singleflight"

	"quizhub/internal/domain"
)

// AttemptSource is the attempt feed the ranker derives from.
type AttemptSource interface {
	ListAll(ctx context.Context) []domain.Attempt
}

// Leaderboard derives an ordered ranking from the attempt collection. It
// holds no storage of its own: every ranking is recomputed from a fresh read,
// so it is safe to call repeatedly and concurrently. Concurrent identical
// queries are coalesced into a single store read.
type Leaderboard struct {
	attempts AttemptSource
	sf       singleflight.Group
}

func NewLeaderboard(attempts AttemptSource) *Leaderboard {
	return &Leaderboard{attempts: attempts}
}

// Rank returns attempts ordered by score descending, ties broken by earlier
// completion (speed wins among equal performance). The sort is stable:
// attempts with identical score and timestamp keep their pre-sort order.
// quizID scopes the ranking to one quiz; empty ranks everything. No matching
// attempts yields an empty sequence, not an error.
func (l *Leaderboard) Rank(ctx context.Context, quizID string) []domain.LeaderboardEntry {
	result, _, _ := l.sf.Do(quizID, func() (interface{}, error) {
		return l.rank(ctx, quizID), nil
	})
	return result.([]domain.LeaderboardEntry)
}

func (l *Leaderboard) rank(ctx context.Context, quizID string) []domain.LeaderboardEntry {
	attempts := l.attempts.ListAll(ctx)

	filtered := attempts[:0:0]
	for _, attempt := range attempts {
		if quizID == "" || attempt.QuizID == quizID {
			filtered = append(filtered, attempt)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].CompletedAt.Before(filtered[j].CompletedAt)
	})

	entries := make([]domain.LeaderboardEntry, 0, len(filtered))
	for i, attempt := range filtered {
		entries = append(entries, domain.LeaderboardEntry{Rank: i + 1, Attempt: attempt})
	}
	return entries
}
