package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"ramadan-quiz-service/internal/app"
	"ramadan-quiz-service/internal/infra/memory"
)

const adminEmail = "admin@example.com"

func TestCurrentQuestionEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/api/current-question", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var question struct {
		ID      int64    `json:"id"`
		Text    string   `json:"text"`
		Answers []string `json:"answers"`
		Correct int      `json:"correct"`
	}
	decodeBody(t, rec, &question)
	if question.ID != 1 || len(question.Answers) != 4 || question.Correct != 1 {
		t.Fatalf("expected the seed question, got %+v", question)
	}
}

func TestLoginEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/api/login", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", rec.Code)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &errBody)
	if errBody.Error == "" {
		t.Fatalf("expected an error message")
	}

	rec = doRequest(t, mux, http.MethodPost, "/api/login", `{"email":"a@x.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool `json:"success"`
		User    struct {
			ID       int64  `json:"id"`
			Email    string `json:"email"`
			JoinedAt string `json:"joinedAt"`
		} `json:"user"`
		IsAdmin bool `json:"isAdmin"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.User.Email != "a@x.com" || resp.IsAdmin {
		t.Fatalf("unexpected login response %+v", resp)
	}
	if resp.User.ID == 0 || resp.User.JoinedAt == "" {
		t.Fatalf("expected a populated user record, got %+v", resp.User)
	}

	rec = doRequest(t, mux, http.MethodPost, "/api/login", `{"email":"`+adminEmail+`"}`)
	decodeBody(t, rec, &resp)
	if !resp.IsAdmin {
		t.Fatalf("expected the admin flag for %s", adminEmail)
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, body := range []string{`{}`, `{"email":"a@x.com"}`, `{"answerIndex":1}`} {
		rec := doRequest(t, mux, http.MethodPost, "/api/submit-answer", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}

	rec := doRequest(t, mux, http.MethodPost, "/api/submit-answer", `{"email":"a@x.com","answerIndex":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success   bool   `json:"success"`
		IsCorrect bool   `json:"isCorrect"`
		Message   string `json:"message"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success || !resp.IsCorrect || resp.Message == "" {
		t.Fatalf("unexpected submit response %+v", resp)
	}
}

func TestAddQuestionEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/api/add-question",
		`{"text":"Q","answers":["A","B","C","D"],"correct":2,"adminEmail":"user@x.com"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	// correct is accepted both as a number and as a string.
	for _, correct := range []string{`2`, `"2"`} {
		rec = doRequest(t, mux, http.MethodPost, "/api/add-question",
			`{"text":"Q","answers":["A","B","C","D"],"correct":`+correct+`,"adminEmail":"`+adminEmail+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for correct=%s, got %d: %s", correct, rec.Code, rec.Body)
		}
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/current-question", "")
	var question struct {
		Text    string `json:"text"`
		Correct int    `json:"correct"`
	}
	decodeBody(t, rec, &question)
	if question.Text != "Q" || question.Correct != 2 {
		t.Fatalf("expected the rotated question, got %+v", question)
	}
}

func TestStatsEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/api/stats?adminEmail=user@x.com", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	doRequest(t, mux, http.MethodPost, "/api/login", `{"email":"a@x.com"}`)
	doRequest(t, mux, http.MethodPost, "/api/add-question",
		`{"text":"Q","answers":["A","B","C","D"],"correct":2,"adminEmail":"`+adminEmail+`"}`)

	rec = doRequest(t, mux, http.MethodGet, "/api/stats?adminEmail="+adminEmail, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		TotalUsers     int               `json:"totalUsers"`
		TotalQuestions int               `json:"totalQuestions"`
		Archive        []json.RawMessage `json:"archive"`
		Users          []json.RawMessage `json:"users"`
	}
	decodeBody(t, rec, &stats)
	if stats.TotalUsers != 1 || stats.TotalQuestions != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if len(stats.Archive) != 1 || len(stats.Users) != 1 {
		t.Fatalf("expected the collections verbatim, got %d/%d", len(stats.Archive), len(stats.Users))
	}
}

func TestDeleteQuestionEndpoint(t *testing.T) {
	mux, service := newTestMux(t)

	ctx := context.Background()
	if err := service.AddQuestion(ctx, adminEmail, "Q", []string{"A", "B"}, "1"); err != nil {
		t.Fatalf("add question failed: %v", err)
	}
	id := service.CurrentQuestion().ID

	rec := doRequest(t, mux, http.MethodDelete, "/api/delete-question/1", `{"adminEmail":"user@x.com"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	// Unknown and unparsable ids both succeed as no-ops.
	for _, path := range []string{"/api/delete-question/999", "/api/delete-question/abc"} {
		rec = doRequest(t, mux, http.MethodDelete, path, `{"adminEmail":"`+adminEmail+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, rec.Code)
		}
	}
	if stats, _ := service.Stats(adminEmail); stats.TotalQuestions != 1 {
		t.Fatalf("no-op delete changed the archive")
	}

	rec = doRequest(t, mux, http.MethodDelete, "/api/delete-question/"+itoa(id), `{"adminEmail":"`+adminEmail+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stats, _ := service.Stats(adminEmail); stats.TotalQuestions != 0 {
		t.Fatalf("expected the session to be deleted")
	}
}

func TestDeleteQuestionBodyHandling(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodDelete, "/api/delete-question/1", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed body, got %d", rec.Code)
	}

	// No body at all reads as no adminEmail, so the admin check rejects it.
	rec = doRequest(t, mux, http.MethodDelete, "/api/delete-question/1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a missing body, got %d", rec.Code)
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *app.QuizService) {
	t.Helper()
	clock := testClock()
	service := app.NewQuizServiceWithClock(context.Background(), memory.NewStore(), adminEmail, clock)
	mux := http.NewServeMux()
	NewAPIHandler(service).Register(mux)
	mux.HandleFunc("GET /ws/stats", NewStatsFeed(service).ServeWS)
	return mux, service
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func testClock() func() time.Time {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}
