package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"log/slog"

	"github.com/memomate/memomate/core/logger"
)

// NewRouter builds the HTTP surface of the persistence service.
func NewRouter(repo Repository) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)

	h := &handlers{repo: repo}

	r.Get("/", h.root)
	r.Post("/users/create", h.createUser)
	r.Get("/users/{userID}", h.getUser)
	r.Post("/words/create/", h.createWord)
	r.Get("/words/translation/{toCode2}/{level}", h.checkTranslation)
	r.Get("/words/random/{toCode2}", h.randomWord)
	r.Post("/words/update_correct_count/{userID}/{wordID}", h.incrementCorrectCount)

	return r
}

// Serve runs the persistence API until ctx is cancelled, then shuts the
// listener down gracefully.
func Serve(ctx context.Context, addr string, repo Repository) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(repo),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "api", "api.listen",
			slog.String("status", "ok"),
			slog.String("listen", addr),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info(context.Background(), "api", "api.stop",
			slog.String("status", "ok"),
		)
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type handlers struct {
	repo Repository
}

func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "MemoMate API running"})
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(u.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ok, err := h.repo.LevelExists(r.Context(), u.LevelID)
	if err != nil {
		writeServerError(r.Context(), w, "users.create", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid level ID")
		return
	}
	if err := h.repo.CreateUser(r.Context(), u); err != nil {
		writeServerError(r.Context(), w, "users.create", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	u, err := h.repo.GetUser(r.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeServerError(r.Context(), w, "users.get", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) createWord(w http.ResponseWriter, r *http.Request) {
	var word Word
	if err := json.NewDecoder(r.Body).Decode(&word); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(word.DE) == "" {
		writeError(w, http.StatusBadRequest, "de is required")
		return
	}
	ok, err := h.repo.LevelExists(r.Context(), word.LevelID)
	if err != nil {
		writeServerError(r.Context(), w, "words.create", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid level ID")
		return
	}
	created, err := h.repo.CreateWord(r.Context(), word)
	if err != nil {
		writeServerError(r.Context(), w, "words.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) checkTranslation(w http.ResponseWriter, r *http.Request) {
	code := strings.ToLower(chi.URLParam(r, "toCode2"))
	level := strings.ToLower(chi.URLParam(r, "level"))
	if !validTranslationCode(code) {
		writeError(w, http.StatusBadRequest, "Invalid target language")
		return
	}
	total, err := h.repo.CountWords(r.Context(), level)
	if err != nil {
		writeServerError(r.Context(), w, "words.translation", err)
		return
	}
	if total == 0 {
		writeError(w, http.StatusNotFound, "No translations for "+code)
		return
	}
	has, err := h.repo.HasTranslation(r.Context(), level, code)
	if err != nil {
		writeServerError(r.Context(), w, "words.translation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_translation": has})
}

func (h *handlers) randomWord(w http.ResponseWriter, r *http.Request) {
	code := strings.ToLower(chi.URLParam(r, "toCode2"))
	if !validTranslationCode(code) {
		writeError(w, http.StatusBadRequest, "Invalid language code")
		return
	}
	word, err := h.repo.RandomWord(r.Context(), code)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "No words with valid "+code+" translation found")
		return
	}
	if err != nil {
		writeServerError(r.Context(), w, "words.random", err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (h *handlers) incrementCorrectCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	wordID, err := strconv.ParseInt(chi.URLParam(r, "wordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid word id")
		return
	}
	count, err := h.repo.IncrementCorrectCount(r.Context(), userID, wordID)
	if err != nil {
		writeServerError(r.Context(), w, "words.progress", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":   userID,
		"word_id":   wordID,
		"new_count": count,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors the {"detail": ...} error shape the store client and
// earlier deployments expect.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeServerError(ctx context.Context, w http.ResponseWriter, event string, err error) {
	logger.Error(ctx, "api", event,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info(r.Context(), "api", "http.request",
			slog.String("handler", r.Method+" "+r.URL.Path),
			slog.Int("http_code", rec.status),
			slog.Duration("duration", logger.Took(start)),
		)
	})
}
