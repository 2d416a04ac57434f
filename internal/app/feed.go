package app

import (
	"context"
	"sync"

	"quizhub/internal/domain"
)

// LeaderboardFeed fans fresh rankings out to subscribers whenever an attempt
// lands. It is a push-only scoreboard ticker: subscribers never write back.
type LeaderboardFeed struct {
	ranker *Leaderboard

	mu   sync.Mutex
	subs map[string]map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardFeed(ranker *Leaderboard) *LeaderboardFeed {
	return &LeaderboardFeed{
		ranker: ranker,
		subs:   make(map[string]map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe registers interest in rankings for quizID (empty for the global
// board). The caller must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(quizID string) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	f.mu.Lock()
	if f.subs[quizID] == nil {
		f.subs[quizID] = make(map[chan []domain.LeaderboardEntry]struct{})
	}
	f.subs[quizID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[quizID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(f.subs, quizID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Notify recomputes the ranking for quizID and pushes it to that quiz's
// subscribers and to global subscribers. Slow subscribers have their stale
// snapshot dropped rather than blocking the broadcast.
func (f *LeaderboardFeed) Notify(ctx context.Context, quizID string) {
	f.mu.Lock()
	quizSubs := len(f.subs[quizID])
	globalSubs := len(f.subs[""])
	f.mu.Unlock()
	if quizSubs == 0 && globalSubs == 0 {
		return
	}

	if quizSubs > 0 {
		f.publish(quizID, f.ranker.Rank(ctx, quizID))
	}
	if globalSubs > 0 && quizID != "" {
		f.publish("", f.ranker.Rank(ctx, ""))
	}
}

func (f *LeaderboardFeed) publish(quizID string, entries []domain.LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[quizID] {
		select {
		case ch <- entries:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
