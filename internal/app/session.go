package app

import (
	"context"
	"time"

	"quizhub/internal/domain"
)

// Session is the explicit per-request identity context. It is established
// from a reconciled profile at bootstrap and passed through context to every
// operation that needs identity; there is no ambient current-user state.
type Session struct {
	Profile   domain.Profile
	StartedAt time.Time
}

// IsAdmin is the explicit policy check for admin-only operations. It reads
// the stored role but remains the single place such a decision is made.
func (s Session) IsAdmin() bool {
	return s.Profile.Role == domain.RoleAdmin
}

type sessionKey struct{}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session established for this request, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
