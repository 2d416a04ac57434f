package domain

import "time"

// Role classifies a profile. It is a usability default assigned once at
// profile creation; authorization decisions must not trust it on its own.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the durable record of a platform identity, distinct from the
// raw principal reported by the identity provider. Role and CreatedAt are
// first-write-wins: once stored they are never recomputed.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"photoURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignInEvent carries what the identity provider knows about a signed-in
// principal.
type SignInEvent struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Question is owned exclusively by its quiz; option order is significant.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Quiz is an authored, shareable collection of ordered questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  string     `json:"difficulty"`
	Topic       string     `json:"topic,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	ShareLink   string     `json:"shareLink"`
}

// QuizDraft is the author-supplied part of a quiz; id, timestamp and share
// link are assigned server-side on create.
type QuizDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  string     `json:"difficulty"`
	Topic       string     `json:"topic,omitempty"`
	Questions   []Question `json:"questions"`
}

// Attempt is one user's completed submission against a quiz. UserID may be
// empty for anonymous attempts. CompletedAt is assigned by the recorder at
// persistence time and never mutated.
type Attempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	UserID      string    `json:"userId,omitempty"`
	Score       int       `json:"score"`
	Answers     []int     `json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
}

// AttemptDraft is the client-supplied part of an attempt. The completion
// timestamp deliberately comes from the recorder, not the client, so clock
// skew cannot reorder the leaderboard.
type AttemptDraft struct {
	QuizID  string `json:"quizId"`
	UserID  string `json:"userId,omitempty"`
	Score   int    `json:"score"`
	Answers []int  `json:"answers"`
}

// LeaderboardEntry is a derived, non-persisted projection of an attempt.
// Rank is the 1-based position in the sorted sequence; tied scores occupy
// adjacent but distinct positions.
type LeaderboardEntry struct {
	Rank    int     `json:"rank"`
	Attempt Attempt `json:"attempt"`
}
