package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quizhub/internal/app"
	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/verification"
)

// Server exposes the quiz platform over HTTP.
type Server struct {
	identity  *app.Identity
	quizzes   *app.QuizRepository
	attempts  *app.AttemptRecorder
	ranker    *app.Leaderboard
	feed      *app.LeaderboardFeed
	verifier  *verification.Dispatcher
	jwtSecret string
	log       *zap.Logger
}

func NewServer(
	identity *app.Identity,
	quizzes *app.QuizRepository,
	attempts *app.AttemptRecorder,
	ranker *app.Leaderboard,
	feed *app.LeaderboardFeed,
	verifier *verification.Dispatcher,
	jwtSecret string,
	log *zap.Logger,
) *Server {
	return &Server{
		identity:  identity,
		quizzes:   quizzes,
		attempts:  attempts,
		ranker:    ranker,
		feed:      feed,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/session", s.handleSession)
	r.Post("/signup", s.handleSignup)
	r.Post("/verification", s.handleVerification)

	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", s.handleCreateQuiz)
		r.Get("/", s.handleListQuizzes)
		r.Get("/{quizID}", s.handleGetQuiz)
		r.Delete("/{quizID}", s.handleDeleteQuiz)
	})
	// Share-locator alias: {origin}/quiz/{id} resolves the same document.
	r.Get("/quiz/{quizID}", s.handleGetQuiz)

	r.Post("/attempts", s.handleRecordAttempt)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/ws/leaderboard", s.handleLeaderboardWS)

	return r
}

// signInEvent authenticates the request's bearer token against the identity
// provider's signing secret.
func (s *Server) signInEvent(r *http.Request) (domain.SignInEvent, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return domain.SignInEvent{}, domain.ErrNoSession
	}
	return auth.ParseSignInToken(strings.TrimPrefix(header, "Bearer "), s.jwtSecret)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ev, err := s.signInEvent(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	profile, err := s.identity.Reconcile(r.Context(), ev)
	if err != nil {
		s.log.Error("reconcile failed", zap.String("subject", ev.SubjectID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "profile_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type signupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ev, err := s.signInEvent(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	profile, err := s.identity.CreateProfile(r.Context(), ev, req.Name)
	if err != nil {
		s.log.Error("signup profile write failed", zap.String("subject", ev.SubjectID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "profile_not_persisted")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

type verificationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	err := s.verifier.SendVerification(r.Context(), req.Name, req.Email, req.Code)
	var validationErr *domain.ValidationError
	var dispatchErr *domain.DispatchError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &dispatchErr) && dispatchErr.Configuration:
		// Sanitized: config details stay in the logs.
		writeError(w, http.StatusServiceUnavailable, "email service is not configured")
	default:
		writeError(w, http.StatusBadGateway, "verification delivery failed")
	}
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var draft domain.QuizDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if draft.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	quiz, err := s.quizzes.Create(r.Context(), draft)
	if err != nil {
		s.log.Error("quiz create failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "quiz_not_persisted")
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.quizzes.ListAll(r.Context()))
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.quizzes.GetByID(r.Context(), chi.URLParam(r, "quizID"))
	if !ok {
		writeError(w, http.StatusNotFound, "quiz_not_found")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.quizzes.Remove(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		s.log.Error("quiz delete failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "quiz_not_deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	var draft domain.AttemptDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if draft.QuizID == "" {
		writeError(w, http.StatusBadRequest, "quizId is required")
		return
	}
	// An authenticated caller's identity overrides the draft; otherwise the
	// attempt is recorded as anonymous or with the self-reported id.
	if ev, err := s.signInEvent(r); err == nil {
		profile, err := s.identity.Reconcile(r.Context(), ev)
		if err == nil {
			ctx := app.WithSession(r.Context(), app.Session{Profile: profile, StartedAt: time.Now()})
			r = r.WithContext(ctx)
			draft.UserID = profile.ID
		}
	}

	attempt, err := s.attempts.Record(r.Context(), draft)
	if err != nil {
		s.log.Error("attempt record failed", zap.String("quizId", draft.QuizID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "attempt_not_persisted")
		return
	}
	s.feed.Notify(r.Context(), attempt.QuizID)
	writeJSON(w, http.StatusCreated, attempt)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	writeJSON(w, http.StatusOK, s.ranker.Rank(r.Context(), quizID))
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
