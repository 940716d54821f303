package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/memomate/memomate/core/lang"
)

func TestParseWordList(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "plain dict",
			raw:  `{1: "Haus", 2: "Auto", 3: "Baum"}`,
			want: []string{"Haus", "Auto", "Baum"},
		},
		{
			name: "single quotes and prose",
			raw:  "Here you go:\n{1: 'Wasser', 2: 'Licht'}",
			want: []string{"Wasser", "Licht"},
		},
		{
			name: "unordered keys",
			raw:  `{2: "Katze", 1: "Hund"}`,
			want: []string{"Hund", "Katze"},
		},
		{
			name:    "no entries",
			raw:     "Sorry, I cannot help with that.",
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseWordList(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWordList: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestDeepLTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("source_lang") != "DE" || r.PostForm.Get("target_lang") != "EN" {
			t.Errorf("unexpected language pair: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "house"}},
		})
	}))
	defer srv.Close()

	tr := NewDeepLTranslator("key", srv.URL, time.Second)
	got, err := tr.Translate(context.Background(), "Haus", lang.DE, lang.EN)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "house" {
		t.Fatalf("Translate = %q, want %q", got, "house")
	}
}

func TestDeepLTranslateEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "  "}},
		})
	}))
	defer srv.Close()

	tr := NewDeepLTranslator("key", srv.URL, time.Second)
	if _, err := tr.Translate(context.Background(), "Haus", lang.DE, lang.EN); err == nil {
		t.Fatal("expected error for blank translation")
	}
}

type fakeGenerator struct {
	words []string
	err   error
}

func (f *fakeGenerator) GenerateWordList(context.Context, lang.Language, lang.Language, lang.Level, int) ([]string, error) {
	return f.words, f.err
}

type fakeTranslator struct {
	table map[string]string
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _, _ lang.Language) (string, error) {
	if tr, ok := f.table[text]; ok {
		return tr, nil
	}
	return "", fmt.Errorf("no translation for %q", text)
}

func TestBuildVocabularySkipsFailures(t *testing.T) {
	p := NewProvider(
		&fakeGenerator{words: []string{"Haus", "Auto", "Baum"}},
		&fakeTranslator{table: map[string]string{"Haus": "house", "Baum": "tree"}},
	)

	pairs, err := p.BuildVocabulary(context.Background(), lang.DE, lang.EN, lang.Easy, 3)
	if err != nil {
		t.Fatalf("BuildVocabulary: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Source != "Haus" || pairs[0].Translation != "house" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
}

func TestBuildVocabularyAllFailed(t *testing.T) {
	p := NewProvider(
		&fakeGenerator{words: []string{"Haus"}},
		&fakeTranslator{table: map[string]string{}},
	)
	if _, err := p.BuildVocabulary(context.Background(), lang.DE, lang.EN, lang.Easy, 1); err == nil {
		t.Fatal("expected error when every translation fails")
	}
}
