package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub/internal/domain"
)

// AttemptRecorder persists completed attempts. It assigns both id and
// completion timestamp at persistence time; client-supplied timing is never
// trusted. A quiz id that no longer resolves is tolerated: attempts may
// dangle and the ranker simply filters them out.
type AttemptRecorder struct {
	store DocumentStore
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func NewAttemptRecorder(store DocumentStore, log *zap.Logger) *AttemptRecorder {
	return NewAttemptRecorderWithClock(store, log, time.Now)
}

// NewAttemptRecorderWithClock is test-only for deterministic timestamps.
func NewAttemptRecorderWithClock(store DocumentStore, log *zap.Logger, now func() time.Time) *AttemptRecorder {
	return &AttemptRecorder{store: store, log: log, now: now, newID: uuid.NewString}
}

// Record persists a completed attempt and returns it. A failed write
// propagates: a lost attempt must be visible to the user, never silently
// swallowed.
func (r *AttemptRecorder) Record(ctx context.Context, draft domain.AttemptDraft) (domain.Attempt, error) {
	attempt := domain.Attempt{
		ID:          r.newID(),
		QuizID:      draft.QuizID,
		UserID:      draft.UserID,
		Score:       draft.Score,
		Answers:     draft.Answers,
		CompletedAt: r.now().UTC(),
	}
	data, err := json.Marshal(attempt)
	if err != nil {
		return domain.Attempt{}, err
	}
	path := attemptPath(attempt.ID)
	if err := r.store.Set(ctx, path, data); err != nil {
		return domain.Attempt{}, &domain.StoreWriteError{Path: path, Err: err}
	}
	return attempt, nil
}

// ListAll returns every stored attempt, or an empty slice on read failure.
func (r *AttemptRecorder) ListAll(ctx context.Context) []domain.Attempt {
	raws, err := r.store.List(ctx, attemptCollection)
	if err != nil {
		r.log.Warn("attempt list failed", zap.Error(err))
		return nil
	}
	attempts := make([]domain.Attempt, 0, len(raws))
	for _, raw := range raws {
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			r.log.Warn("skipping malformed attempt document", zap.Error(err))
			continue
		}
		attempts = append(attempts, attempt)
	}
	return attempts
}
