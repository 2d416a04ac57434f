package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/app"
	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/infra/memory"
	"quizhub/internal/verification"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop()

	identity := app.NewIdentity(store, log)
	quizzes := app.NewQuizRepository(store, "https://quizhub.example.com", log)
	attempts := app.NewAttemptRecorder(store, log)
	ranker := app.NewLeaderboard(attempts)
	feed := app.NewLeaderboardFeed(ranker)
	verifier := verification.NewDispatcher(verification.Config{}, log)

	srv := NewServer(identity, quizzes, attempts, ranker, feed, verifier, testSecret, log)
	server := httptest.NewServer(srv.Router())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestQuizCreateGetDelete(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/quizzes", domain.QuizDraft{
		Title:      "Capitals",
		Difficulty: "easy",
		Questions: []domain.Question{
			{Prompt: "Capital of France?", Options: []string{"Paris", "Lyon"}, Answer: 0},
		},
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[domain.Quiz](t, resp)
	if created.ShareLink != "https://quizhub.example.com/quiz/"+created.ID {
		t.Fatalf("unexpected share link %q", created.ShareLink)
	}

	// Both the collection route and the share-locator alias resolve it.
	for _, path := range []string{"/quizzes/" + created.ID, "/quiz/" + created.ID} {
		getResp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		if getResp.StatusCode != http.StatusOK {
			t.Fatalf("get %s status = %d", path, getResp.StatusCode)
		}
		got := decode[domain.Quiz](t, getResp)
		if got.ID != created.ID {
			t.Fatalf("got quiz %q, want %q", got.ID, created.ID)
		}
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/quizzes/"+created.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}
	// Idempotent: deleting again still succeeds.
	delResp, err = http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("second delete status = %d", delResp.StatusCode)
	}

	getResp, err := http.Get(server.URL + "/quizzes/" + created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}

func TestCreateQuizRequiresTitle(t *testing.T) {
	server := newTestServer(t)
	resp := postJSON(t, server.URL+"/quizzes", domain.QuizDraft{Difficulty: "easy"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAttemptAndLeaderboardFlow(t *testing.T) {
	server := newTestServer(t)

	createResp := postJSON(t, server.URL+"/quizzes", domain.QuizDraft{Title: "Capitals", Difficulty: "easy"}, nil)
	quiz := decode[domain.Quiz](t, createResp)

	for _, score := range []int{50, 80, 30} {
		resp := postJSON(t, server.URL+"/attempts", domain.AttemptDraft{QuizID: quiz.ID, Score: score}, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("attempt status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	lbResp, err := http.Get(server.URL + "/leaderboard?quizId=" + quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	entries := decode[[]domain.LeaderboardEntry](t, lbResp)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantScores := []int{80, 50, 30}
	for i, want := range wantScores {
		if entries[i].Attempt.Score != want || entries[i].Rank != i+1 {
			t.Fatalf("position %d: got score=%d rank=%d, want score=%d rank=%d",
				i, entries[i].Attempt.Score, entries[i].Rank, want, i+1)
		}
	}
}

func TestAuthenticatedAttemptUsesProfileIdentity(t *testing.T) {
	server := newTestServer(t)

	token, err := auth.IssueSignInToken(domain.SignInEvent{
		SubjectID: "sub-9", Email: "gina@example.com", DisplayName: "Gina",
	}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	createResp := postJSON(t, server.URL+"/quizzes", domain.QuizDraft{Title: "T", Difficulty: "hard"}, nil)
	quiz := decode[domain.Quiz](t, createResp)

	resp := postJSON(t, server.URL+"/attempts",
		domain.AttemptDraft{QuizID: quiz.ID, UserID: "spoofed", Score: 70},
		map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("attempt status = %d", resp.StatusCode)
	}
	attempt := decode[domain.Attempt](t, resp)
	if attempt.UserID != "sub-9" {
		t.Fatalf("authenticated identity must win, got %q", attempt.UserID)
	}
}

func TestSessionAndSignup(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/session", struct{}{}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("session without token status = %d", resp.StatusCode)
	}

	token, err := auth.IssueSignInToken(domain.SignInEvent{
		SubjectID: "sub-1", Email: "admin@example.com",
	}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + token}

	signupResp := postJSON(t, server.URL+"/signup", map[string]string{"name": "Root"}, headers)
	if signupResp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", signupResp.StatusCode)
	}
	profile := decode[domain.Profile](t, signupResp)
	if profile.Name != "Root" || profile.Role != domain.RoleAdmin {
		t.Fatalf("unexpected profile %+v", profile)
	}

	sessResp := postJSON(t, server.URL+"/session", struct{}{}, headers)
	if sessResp.StatusCode != http.StatusOK {
		t.Fatalf("session status = %d", sessResp.StatusCode)
	}
	same := decode[domain.Profile](t, sessResp)
	if same.ID != profile.ID || !same.CreatedAt.Equal(profile.CreatedAt) {
		t.Fatalf("session must return the stored profile, got %+v", same)
	}
}

func TestVerificationValidation(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/verification",
		map[string]string{"name": "A", "email": "not-an-email", "code": "482913"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad email status = %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/verification",
		map[string]string{"name": "A", "email": "a@example.com", "code": "12345"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad code status = %d", resp.StatusCode)
	}

	// Valid inputs against an unconfigured dispatcher: sanitized 503.
	resp = postJSON(t, server.URL+"/verification",
		map[string]string{"name": "A", "email": "a@example.com", "code": "482913"}, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured status = %d", resp.StatusCode)
	}
}
