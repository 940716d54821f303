package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeRepo struct {
	levels map[string]bool
	users  map[string]User
	words  []Word
	counts map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		levels: map[string]bool{"easy": true, "hard": true},
		users:  make(map[string]User),
		counts: make(map[string]int),
	}
}

func (f *fakeRepo) LevelExists(_ context.Context, levelID string) (bool, error) {
	return f.levels[levelID], nil
}

func (f *fakeRepo) CreateUser(_ context.Context, u User) error {
	f.users[u.UserID] = u
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, userID string) (User, error) {
	u, ok := f.users[userID]
	if !ok {
		return User{}, fmt.Errorf("get user %s: %w", userID, ErrNotFound)
	}
	return u, nil
}

func (f *fakeRepo) CreateWord(_ context.Context, w Word) (Word, error) {
	w.WordID = int64(len(f.words) + 1)
	f.words = append(f.words, w)
	return w, nil
}

func (f *fakeRepo) CountWords(_ context.Context, levelID string) (int, error) {
	n := 0
	for _, w := range f.words {
		if w.LevelID == levelID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) HasTranslation(_ context.Context, levelID, code string) (bool, error) {
	for _, w := range f.words {
		if w.LevelID != levelID {
			continue
		}
		if t := translationOf(w, code); t != nil && *t != "" {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) RandomWord(_ context.Context, code string) (RandomWord, error) {
	for _, w := range f.words {
		if t := translationOf(w, code); t != nil && *t != "" {
			return RandomWord{WordID: w.WordID, DE: w.DE, Translation: *t}, nil
		}
	}
	return RandomWord{}, fmt.Errorf("random word %s: %w", code, ErrNotFound)
}

func (f *fakeRepo) IncrementCorrectCount(_ context.Context, userID string, wordID int64) (int, error) {
	key := fmt.Sprintf("%s/%d", userID, wordID)
	f.counts[key]++
	return f.counts[key], nil
}

func translationOf(w Word, code string) *string {
	switch code {
	case "en":
		return w.EN
	case "es":
		return w.ES
	case "ua":
		return w.UA
	case "ru":
		return w.RU
	}
	return nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateUserValidatesLevel(t *testing.T) {
	repo := newFakeRepo()
	router := NewRouter(repo)

	rr := doJSON(t, router, http.MethodPost, "/users/create", User{
		UserID: "CH1", LevelID: "impossible", FromCode2: "de", ToCode2: "en",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for unknown level", rr.Code)
	}
	if len(repo.users) != 0 {
		t.Fatal("user created despite invalid level")
	}

	rr = doJSON(t, router, http.MethodPost, "/users/create", User{
		UserID: "CH1", LevelID: "hard", FromCode2: "de", ToCode2: "en",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	if repo.users["CH1"].LevelID != "hard" {
		t.Fatalf("stored user = %+v", repo.users["CH1"])
	}
}

func TestGetUser(t *testing.T) {
	repo := newFakeRepo()
	repo.users["CH1"] = User{UserID: "CH1", LevelID: "easy", FromCode2: "de", ToCode2: "es"}
	router := NewRouter(repo)

	rr := doJSON(t, router, http.MethodGet, "/users/CH1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	var u User
	if err := json.NewDecoder(rr.Body).Decode(&u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ToCode2 != "es" {
		t.Fatalf("to_code2 = %s, want es", u.ToCode2)
	}

	rr = doJSON(t, router, http.MethodGet, "/users/CH404", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rr.Code)
	}
}

func TestCreateWord(t *testing.T) {
	repo := newFakeRepo()
	router := NewRouter(repo)
	en := "house"

	rr := doJSON(t, router, http.MethodPost, "/words/create/", Word{LevelID: "easy", DE: "Haus", EN: &en})
	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d, want 201", rr.Code)
	}
	var created Word
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.WordID == 0 {
		t.Fatal("word id not assigned")
	}

	rr = doJSON(t, router, http.MethodPost, "/words/create/", Word{LevelID: "nope", DE: "Baum"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for unknown level", rr.Code)
	}
}

func TestCheckTranslation(t *testing.T) {
	repo := newFakeRepo()
	router := NewRouter(repo)

	// no words for the level at all
	rr := doJSON(t, router, http.MethodGet, "/words/translation/en/easy", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404 for empty level", rr.Code)
	}

	en := "house"
	repo.words = append(repo.words, Word{WordID: 1, LevelID: "easy", DE: "Haus", EN: &en})

	rr = doJSON(t, router, http.MethodGet, "/words/translation/en/easy", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	var body struct {
		HasTranslation bool `json:"has_translation"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.HasTranslation {
		t.Fatal("has_translation = false, want true")
	}

	rr = doJSON(t, router, http.MethodGet, "/words/translation/es/easy", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.HasTranslation {
		t.Fatal("has_translation = true for a language without words")
	}

	rr = doJSON(t, router, http.MethodGet, "/words/translation/de/easy", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for the source language", rr.Code)
	}
}

func TestRandomWord(t *testing.T) {
	repo := newFakeRepo()
	router := NewRouter(repo)

	rr := doJSON(t, router, http.MethodGet, "/words/random/en", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404 with no words", rr.Code)
	}

	en := "house"
	repo.words = append(repo.words, Word{WordID: 5, LevelID: "easy", DE: "Haus", EN: &en})

	rr = doJSON(t, router, http.MethodGet, "/words/random/en", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	var word RandomWord
	if err := json.NewDecoder(rr.Body).Decode(&word); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if word.WordID != 5 || word.DE != "Haus" || word.Translation != "house" {
		t.Fatalf("word = %+v", word)
	}

	rr = doJSON(t, router, http.MethodGet, "/words/random/xx", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for unknown language", rr.Code)
	}
}

func TestIncrementCorrectCount(t *testing.T) {
	repo := newFakeRepo()
	router := NewRouter(repo)

	for want := 1; want <= 2; want++ {
		rr := doJSON(t, router, http.MethodPost, "/words/update_correct_count/CH1/7", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rr.Code)
		}
		var body struct {
			NewCount int `json:"new_count"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.NewCount != want {
			t.Fatalf("new_count = %d, want %d", body.NewCount, want)
		}
	}

	rr := doJSON(t, router, http.MethodPost, "/words/update_correct_count/CH1/notanumber", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for a bad word id", rr.Code)
	}
}
