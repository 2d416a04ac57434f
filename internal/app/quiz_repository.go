package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizhub/internal/domain"
)

// QuizRepository persists quiz documents in the document store. Reads are
// resilient (absent/empty on failure); writes are not (a lost quiz must be
// visible to its author).
type QuizRepository struct {
	store  DocumentStore
	origin string
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewQuizRepository(store DocumentStore, origin string, log *zap.Logger) *QuizRepository {
	return &QuizRepository{
		store:  store,
		origin: strings.TrimSuffix(origin, "/"),
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create assigns id, creation timestamp and share link, persists the quiz and
// returns it. A failed store write is fatal to the create: no partial quiz
// exists.
func (r *QuizRepository) Create(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:          r.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Difficulty:  draft.Difficulty,
		Topic:       draft.Topic,
		Questions:   draft.Questions,
		CreatedAt:   r.now().UTC(),
	}
	quiz.ShareLink = ShareLink(r.origin, quiz.ID)

	data, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	path := quizPath(quiz.ID)
	if err := r.store.Set(ctx, path, data); err != nil {
		return domain.Quiz{}, &domain.StoreWriteError{Path: path, Err: err}
	}
	return quiz, nil
}

// GetByID returns the quiz and true, or false both when the id is unknown and
// when the read fails; callers cannot distinguish the two at this layer.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (domain.Quiz, bool) {
	raw, err := r.store.Get(ctx, quizPath(id))
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			r.log.Warn("quiz read failed", zap.String("quizId", id), zap.Error(err))
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		r.log.Warn("quiz document malformed", zap.String("quizId", id), zap.Error(err))
		return domain.Quiz{}, false
	}
	return quiz, true
}

// ListAll returns every stored quiz, or an empty slice on read failure.
// Order follows store iteration and is not guaranteed stable across calls.
func (r *QuizRepository) ListAll(ctx context.Context) []domain.Quiz {
	raws, err := r.store.List(ctx, quizCollection)
	if err != nil {
		r.log.Warn("quiz list failed", zap.Error(err))
		return nil
	}
	quizzes := make([]domain.Quiz, 0, len(raws))
	for _, raw := range raws {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			r.log.Warn("skipping malformed quiz document", zap.Error(err))
			continue
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes
}

// Remove deletes a quiz. Removing an already-absent id succeeds.
func (r *QuizRepository) Remove(ctx context.Context, id string) error {
	path := quizPath(id)
	if err := r.store.Remove(ctx, path); err != nil {
		return &domain.StoreWriteError{Path: path, Err: err}
	}
	return nil
}

// ShareLink builds the canonical locator for a quiz: {origin}/quiz/{id}.
func ShareLink(origin, quizID string) string {
	return origin + "/quiz/" + quizID
}

// ResolveShareLink extracts the quiz id from a share locator, i.e. the path
// segment following "/quiz/".
func ResolveShareLink(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	const marker = "/quiz/"
	i := strings.Index(u.Path, marker)
	if i < 0 {
		return "", false
	}
	id := u.Path[i+len(marker):]
	if j := strings.IndexByte(id, '/'); j >= 0 {
		id = id[:j]
	}
	if id == "" {
		return "", false
	}
	return id, true
}
