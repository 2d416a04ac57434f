package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/app"
	"quizhub/internal/domain"
	"quizhub/internal/infra/memory"
)

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	recorder := app.NewAttemptRecorder(memory.NewStore(), zap.NewNop())

	before := time.Now()
	attempt, err := recorder.Record(ctx, domain.AttemptDraft{
		QuizID:  "Q1",
		UserID:  "u1",
		Score:   90,
		Answers: []int{0, 1, 0},
	})
	after := time.Now()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if attempt.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if attempt.CompletedAt.Before(before.UTC()) || attempt.CompletedAt.After(after.UTC()) {
		t.Fatalf("timestamp %v outside call window [%v, %v]", attempt.CompletedAt, before, after)
	}
}

func TestRecordAllowsAnonymousAttempts(t *testing.T) {
	ctx := context.Background()
	recorder := app.NewAttemptRecorder(memory.NewStore(), zap.NewNop())

	attempt, err := recorder.Record(ctx, domain.AttemptDraft{QuizID: "Q1", Score: 10})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if attempt.UserID != "" {
		t.Fatalf("expected empty user id, got %q", attempt.UserID)
	}
}

func TestRecordPropagatesWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.NewStore(), failWrites: true}
	recorder := app.NewAttemptRecorder(store, zap.NewNop())

	_, err := recorder.Record(ctx, domain.AttemptDraft{QuizID: "Q1", Score: 50})
	var writeErr *domain.StoreWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected StoreWriteError, got %v", err)
	}
}

func TestAttemptListAllEmptyOnReadFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.NewStore(), failReads: true}
	recorder := app.NewAttemptRecorder(store, zap.NewNop())

	if got := recorder.ListAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty list on read failure, got %d", len(got))
	}
}
