package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizhub/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type leaderboardMessage struct {
	Type    string                    `json:"type"`
	QuizID  string                    `json:"quizId,omitempty"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// handleLeaderboardWS upgrades the connection and streams a fresh ranking
// whenever an attempt is recorded. The optional quizId query parameter scopes
// the stream to one quiz; without it the global board is streamed.
func (s *Server) handleLeaderboardWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := s.feed.Subscribe(quizID)
	defer cancel()

	initial := leaderboardMessage{
		Type:    "leaderboard",
		QuizID:  quizID,
		Entries: s.ranker.Rank(r.Context(), quizID),
	}
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// The read pump only notices the peer going away; the feed is push-only.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entries, ok := <-updates:
			if !ok {
				return
			}
			msg := leaderboardMessage{Type: "leaderboard", QuizID: quizID, Entries: entries}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
