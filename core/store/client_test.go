package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/memomate/memomate/core/lang"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestCreateUser(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/create" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.CreateUser(context.Background(), "CH001", lang.Hard, lang.DE, lang.EN); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got["level_id"] != "hard" || got["from_code2"] != "de" || got["to_code2"] != "en" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestCreateUserInvalidLevel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid level ID"}`, http.StatusBadRequest)
	}))
	err := c.CreateUser(context.Background(), "CH001", lang.Easy, lang.DE, lang.EN)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("err = %v, want ErrInvalidLevel", err)
	}
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/CH002" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"user_id":    "CH002",
			"user_name":  "",
			"level_id":   "easy",
			"from_code2": "de",
			"to_code2":   "es",
		})
	}))

	u, err := c.GetUser(context.Background(), "CH002")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Level != lang.Easy || u.SourceLanguage != lang.DE || u.TargetLanguage != lang.ES {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := c.GetUser(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHasWord(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/words/translation/en/hard":
			_ = json.NewEncoder(w).Encode(map[string]bool{"has_translation": true})
		default:
			http.NotFound(w, r)
		}
	}))

	ok, err := c.HasWord(context.Background(), lang.EN, lang.Hard)
	if err != nil || !ok {
		t.Fatalf("HasWord(en,hard) = %v, %v; want true", ok, err)
	}

	// Unknown level path answers 404, meaning no vocabulary yet.
	ok, err = c.HasWord(context.Background(), lang.RU, lang.Easy)
	if err != nil || ok {
		t.Fatalf("HasWord(ru,easy) = %v, %v; want false, nil", ok, err)
	}
}

func TestCreateWordTargetColumn(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	if err := c.CreateWord(context.Background(), "Haus", "casa", lang.ES, lang.Easy); err != nil {
		t.Fatalf("CreateWord: %v", err)
	}
	if got["de"] != "Haus" || got["es"] != "casa" {
		t.Fatalf("unexpected payload: %v", got)
	}
	if got["en"] != nil || got["ua"] != nil || got["ru"] != nil {
		t.Fatalf("other translation columns must stay null: %v", got)
	}
}

func TestRandomWord(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/words/random/en":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"word_id": 5, "de": "Haus", "translation": "house",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	w, err := c.RandomWord(context.Background(), lang.EN)
	if err != nil {
		t.Fatalf("RandomWord: %v", err)
	}
	if w.WordID != 5 || w.Source != "Haus" || w.Translation != "house" {
		t.Fatalf("unexpected word: %+v", w)
	}

	if _, err := c.RandomWord(context.Background(), lang.UA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementCorrectCount(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/words/update_correct_count/CH003/9" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id": "CH003", "word_id": 9, "new_count": 4,
		})
	}))

	n, err := c.IncrementCorrectCount(context.Background(), "CH003", 9)
	if err != nil {
		t.Fatalf("IncrementCorrectCount: %v", err)
	}
	if n != 4 {
		t.Fatalf("new count = %d, want 4", n)
	}
}

func TestCallTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.GetUser(context.Background(), "CH004")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("per-call timeout not applied")
	}
}
