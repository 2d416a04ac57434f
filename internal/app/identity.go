package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/domain"
)

const defaultDisplayName = "User"

// Identity reconciles sign-in events from the identity provider with durable
// profiles: exactly one profile per subject id, created lazily on first
// sign-in.
type Identity struct {
	store DocumentStore
	log   *zap.Logger
	now   func() time.Time
}

func NewIdentity(store DocumentStore, log *zap.Logger) *Identity {
	return NewIdentityWithClock(store, log, time.Now)
}

// NewIdentityWithClock is test-only for deterministic creation timestamps.
func NewIdentityWithClock(store DocumentStore, log *zap.Logger, now func() time.Time) *Identity {
	return &Identity{store: store, log: log, now: now}
}

// Reconcile ensures a durable profile exists for the event's subject and
// returns it. A stored profile is returned verbatim except that display name
// and avatar are supplemented from the event when absent in storage; role and
// creation timestamp are never recomputed. When no profile exists one is
// synthesized and persisted; a failed write is logged and the in-memory
// profile returned anyway so the session can proceed.
func (s *Identity) Reconcile(ctx context.Context, ev domain.SignInEvent) (domain.Profile, error) {
	path := userPath(ev.SubjectID)

	raw, err := s.store.Get(ctx, path)
	switch {
	case err == nil:
		var profile domain.Profile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return domain.Profile{}, fmt.Errorf("decode profile %s: %w", ev.SubjectID, err)
		}
		if profile.Name == "" {
			profile.Name = ev.DisplayName
		}
		if profile.Name == "" {
			profile.Name = defaultDisplayName
		}
		if profile.AvatarURL == "" {
			profile.AvatarURL = ev.AvatarURL
		}
		return profile, nil
	case !errors.Is(err, domain.ErrDocumentNotFound):
		return domain.Profile{}, fmt.Errorf("load profile %s: %w", ev.SubjectID, err)
	}

	profile := s.synthesize(ev, ev.DisplayName)
	data, err := json.Marshal(profile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("encode profile %s: %w", ev.SubjectID, err)
	}

	created, err := s.store.SetIfAbsent(ctx, path, data)
	if err != nil {
		// The session proceeds on the in-memory profile; persistence will be
		// retried on the next sign-in.
		s.log.Warn("profile write failed, continuing with in-memory profile",
			zap.String("subject", ev.SubjectID), zap.Error(err))
		return profile, nil
	}
	if !created {
		// Lost a first-sign-in race; the earlier write wins.
		if raw, err := s.store.Get(ctx, path); err == nil {
			var winner domain.Profile
			if err := json.Unmarshal(raw, &winner); err == nil {
				return winner, nil
			}
		}
	}
	return profile, nil
}

// CreateProfile is the explicit signup path. The identity provider guarantees
// subject-id uniqueness on fresh accounts, so no existence check is made, and
// a failed write propagates: signup has no fallback session to continue.
func (s *Identity) CreateProfile(ctx context.Context, principal domain.SignInEvent, suppliedName string) (domain.Profile, error) {
	profile := s.synthesize(principal, suppliedName)
	data, err := json.Marshal(profile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("encode profile %s: %w", principal.SubjectID, err)
	}
	path := userPath(principal.SubjectID)
	if err := s.store.Set(ctx, path, data); err != nil {
		return domain.Profile{}, &domain.StoreWriteError{Path: path, Err: err}
	}
	return profile, nil
}

func (s *Identity) synthesize(ev domain.SignInEvent, name string) domain.Profile {
	if name == "" {
		name = ev.DisplayName
	}
	if name == "" {
		name = defaultDisplayName
	}
	return domain.Profile{
		ID:        ev.SubjectID,
		Email:     ev.Email,
		Name:      name,
		Role:      roleFor(ev.Email),
		AvatarURL: ev.AvatarURL,
		CreatedAt: s.now().UTC(),
	}
}

// roleFor is a documented usability heuristic, not a security boundary:
// admin-only actions still require their own policy check.
func roleFor(email string) domain.Role {
	if strings.Contains(email, "admin") {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
