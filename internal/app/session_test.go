package app_test

import (
	"context"
	"testing"
	"time"

	"quizhub/internal/app"
	"quizhub/internal/domain"
)

func TestSessionContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := app.SessionFrom(ctx); ok {
		t.Fatalf("expected no session on a fresh context")
	}

	session := app.Session{
		Profile:   domain.Profile{ID: "sub-1", Role: domain.RoleAdmin},
		StartedAt: time.Now(),
	}
	ctx = app.WithSession(ctx, session)

	got, ok := app.SessionFrom(ctx)
	if !ok || got.Profile.ID != "sub-1" {
		t.Fatalf("expected session back, got ok=%v %+v", ok, got)
	}
	if !got.IsAdmin() {
		t.Fatalf("expected admin session")
	}
}

func TestSessionIsAdminRequiresAdminRole(t *testing.T) {
	session := app.Session{Profile: domain.Profile{Role: domain.RoleUser}}
	if session.IsAdmin() {
		t.Fatalf("user role must not be admin")
	}
}
