package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"ramadan-quiz-service/internal/app"
	"ramadan-quiz-service/internal/domain"
)

// Client-facing error messages, kept in the original language.
const (
	msgEmailRequired = "البريد الإلكتروني مطلوب"
	msgMissingFields = "البيانات ناقصة"
	msgForbidden     = "غير مصرح"
)

// APIHandler exposes the quiz use cases over the JSON REST surface.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts every API route on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/current-question", h.currentQuestion)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/submit-answer", h.submitAnswer)
	mux.HandleFunc("POST /api/add-question", h.addQuestion)
	mux.HandleFunc("GET /api/stats", h.stats)
	mux.HandleFunc("DELETE /api/delete-question/{id}", h.deleteQuestion)
}

func (h *APIHandler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.CurrentQuestion())
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgEmailRequired)
		return
	}

	user, isAdmin, err := h.service.Login(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"isAdmin": isAdmin,
	})
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		AnswerIndex *int   `json:"answerIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), req.Email, req.AnswerIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"isCorrect": result.IsCorrect,
		"message":   result.Message,
	})
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	// correct arrives as a JSON number or a string, depending on the client.
	var req struct {
		Text       string   `json:"text"`
		Answers    []string `json:"answers"`
		Correct    any      `json:"correct"`
		AdminEmail string   `json:"adminEmail"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	if err := h.service.AddQuestion(r.Context(), req.AdminEmail, req.Text, req.Answers, rawString(req.Correct)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *APIHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.URL.Query().Get("adminEmail"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	// A missing body is tolerated and fails the admin check below; only a
	// malformed one is rejected outright.
	var req struct {
		AdminEmail string `json:"adminEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	// An unparsable id behaves like any unknown id: the delete is a no-op.
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		id = -1
	}

	if err := h.service.DeleteSession(r.Context(), req.AdminEmail, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func rawString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, msgEmailRequired)
	case errors.Is(err, domain.ErrMissingFields):
		writeError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
