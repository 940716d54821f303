package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/memomate/memomate/core/content"
	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/session"
	"github.com/memomate/memomate/core/store"
)

type fakeStore struct {
	mu sync.Mutex

	users map[string]store.User

	createUserCalls int
	createUserErr   error

	hasWord    bool
	hasWordErr error

	createdWords []content.Pair

	random      store.RandomWord
	randomErr   error
	randomCalls int

	counts map[int64]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]store.User),
		counts: make(map[int64]int),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, id string, level lang.Level, source, target lang.Language) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createUserCalls++
	if f.createUserErr != nil {
		return f.createUserErr
	}
	f.users[id] = store.User{ID: id, Level: level, SourceLanguage: source, TargetLanguage: target}
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.User{}, fmt.Errorf("get user %s: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (f *fakeStore) HasWord(_ context.Context, _ lang.Language, _ lang.Level) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasWord, f.hasWordErr
}

func (f *fakeStore) CreateWord(_ context.Context, source, translation string, _ lang.Language, _ lang.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdWords = append(f.createdWords, content.Pair{Source: source, Translation: translation})
	return nil
}

func (f *fakeStore) RandomWord(_ context.Context, _ lang.Language) (store.RandomWord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.randomCalls++
	if f.randomErr != nil {
		return store.RandomWord{}, f.randomErr
	}
	return f.random, nil
}

func (f *fakeStore) IncrementCorrectCount(_ context.Context, _ string, wordID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[wordID]++
	return f.counts[wordID], nil
}

type fakeVocabulary struct {
	pairs []content.Pair
	err   error
	calls int
}

func (f *fakeVocabulary) BuildVocabulary(_ context.Context, _, _ lang.Language, _ lang.Level, _ int) ([]content.Pair, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pairs, nil
}

// replyRecorder captures outbound replies for assertions.
type replyRecorder struct {
	sent []string
	err  error
}

func (r *replyRecorder) reply(_ context.Context, body string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, body)
	return nil
}

func (r *replyRecorder) last(t *testing.T) string {
	t.Helper()
	if len(r.sent) == 0 {
		t.Fatal("expected at least one reply")
	}
	return r.sent[len(r.sent)-1]
}

func checkPendingInvariant(t *testing.T, s *session.Session) {
	t.Helper()
	if s.Pending != nil && s.Status != session.StatusAuthenticated {
		t.Fatalf("pending exercise present in status %s", s.Status)
	}
}

func TestOnboardingLanguageStep(t *testing.T) {
	ds := newFakeStore()
	ob := NewOnboarding(ds, &fakeVocabulary{}, lang.DE, 10)
	rec := &replyRecorder{}
	s := &session.Session{SID: "CH1", Status: session.StatusSelectLanguage}

	reroute, err := ob.Step(context.Background(), s, "EN", rec.reply)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if reroute {
		t.Fatal("language step must not reroute")
	}
	if s.Status != session.StatusSelectLevel {
		t.Fatalf("status = %s, want select_level", s.Status)
	}
	if s.TargetLanguage != lang.EN {
		t.Fatalf("target language = %s, want EN", s.TargetLanguage)
	}
	if !strings.Contains(rec.last(t), "Sprachniveau") {
		t.Fatalf("expected level prompt, got %q", rec.last(t))
	}

	// invalid token re-prompts without advancing
	s2 := &session.Session{SID: "CH2", Status: session.StatusSelectLanguage}
	rec2 := &replyRecorder{}
	if _, err := ob.Step(context.Background(), s2, "xx", rec2.reply); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s2.Status != session.StatusSelectLanguage {
		t.Fatalf("status = %s, want select_language", s2.Status)
	}
	if rec2.last(t) != msgLanguagePrompt {
		t.Fatalf("expected identical language prompt resent, got %q", rec2.last(t))
	}
}

func TestOnboardingRejectsBaseLanguage(t *testing.T) {
	ds := newFakeStore()
	ob := NewOnboarding(ds, &fakeVocabulary{}, lang.DE, 10)
	rec := &replyRecorder{}
	s := &session.Session{SID: "CH1", Status: session.StatusSelectLanguage}

	reroute, err := ob.Step(context.Background(), s, "DE", rec.reply)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if reroute {
		t.Fatal("base language must not reroute")
	}
	if s.Status != session.StatusSelectLanguage {
		t.Fatalf("status = %s, want select_language after base-language pick", s.Status)
	}
	if s.TargetLanguage != "" {
		t.Fatalf("target language = %s, want unset", s.TargetLanguage)
	}
	got := rec.last(t)
	if !strings.Contains(got, msgBaseLanguage) || !strings.Contains(got, "Wähle deine Lernsprache") {
		t.Fatalf("expected rejection plus the language menu, got %q", got)
	}
	if ds.createUserCalls != 0 {
		t.Fatalf("createUser calls = %d, want 0", ds.createUserCalls)
	}
}

func TestOnboardingLevelStepCompletesSetup(t *testing.T) {
	ds := newFakeStore()
	vocab := &fakeVocabulary{pairs: []content.Pair{
		{Source: "Haus", Translation: "house"},
		{Source: "Baum", Translation: "tree"},
	}}
	ob := NewOnboarding(ds, vocab, lang.DE, 10)
	rec := &replyRecorder{}
	s := &session.Session{SID: "CH1", Status: session.StatusSelectLevel, TargetLanguage: lang.EN}

	reroute, err := ob.Step(context.Background(), s, "HARD", rec.reply)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !reroute {
		t.Fatal("completing onboarding must reroute to the quiz")
	}
	if s.Status != session.StatusAuthenticated {
		t.Fatalf("status = %s, want authenticated", s.Status)
	}
	if s.Level != lang.Hard {
		t.Fatalf("level = %s, want HARD", s.Level)
	}
	if ds.createUserCalls != 1 {
		t.Fatalf("createUser calls = %d, want 1", ds.createUserCalls)
	}
	if got := ds.users["CH1"]; got.Level != lang.Hard || got.SourceLanguage != lang.DE || got.TargetLanguage != lang.EN {
		t.Fatalf("persisted user = %+v", got)
	}
	if len(ds.createdWords) != 2 {
		t.Fatalf("stored words = %d, want 2", len(ds.createdWords))
	}
	checkPendingInvariant(t, s)
}

func TestOnboardingVocabularyGatedByExistence(t *testing.T) {
	ds := newFakeStore()
	ds.hasWord = true
	vocab := &fakeVocabulary{pairs: []content.Pair{{Source: "Haus", Translation: "house"}}}
	ob := NewOnboarding(ds, vocab, lang.DE, 10)
	s := &session.Session{SID: "CH1", Status: session.StatusSelectLevel, TargetLanguage: lang.EN}
	rec := &replyRecorder{}

	if _, err := ob.Step(context.Background(), s, "easy", rec.reply); err != nil {
		t.Fatalf("step: %v", err)
	}
	if vocab.calls != 0 {
		t.Fatalf("vocabulary generated despite existing words (%d calls)", vocab.calls)
	}
	if s.Level != lang.Easy {
		t.Fatalf("level = %s, want EASY (case-insensitive parse)", s.Level)
	}
}

func TestOnboardingKnownUserShortCircuits(t *testing.T) {
	ds := newFakeStore()
	ds.users["CH1"] = store.User{ID: "CH1", Level: lang.Hard, SourceLanguage: lang.DE, TargetLanguage: lang.ES}
	ob := NewOnboarding(ds, &fakeVocabulary{}, lang.DE, 10)

	for i := 0; i < 2; i++ {
		s := &session.Session{SID: "CH1", Status: session.StatusUnauthenticated}
		rec := &replyRecorder{}
		reroute, err := ob.Step(context.Background(), s, "", rec.reply)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !reroute {
			t.Fatalf("step %d: known user must reroute to the quiz", i)
		}
		if s.Status != session.StatusAuthenticated {
			t.Fatalf("step %d: status = %s, want authenticated", i, s.Status)
		}
		if s.TargetLanguage != lang.ES || s.Level != lang.Hard {
			t.Fatalf("step %d: loaded %s/%s, want ES/HARD", i, s.TargetLanguage, s.Level)
		}
		if len(rec.sent) != 0 {
			t.Fatalf("step %d: known user got onboarding prompts: %v", i, rec.sent)
		}
	}
	if ds.createUserCalls != 0 {
		t.Fatalf("createUser calls = %d, want 0 for a known user", ds.createUserCalls)
	}
}

func TestQuizTurnCorrectAnswer(t *testing.T) {
	ds := newFakeStore()
	ds.random = store.RandomWord{WordID: 7, Source: "Baum", Translation: "tree"}
	quiz := NewQuiz(ds, 10)
	rec := &replyRecorder{}
	s := &session.Session{
		SID:            "CH1",
		Status:         session.StatusAuthenticated,
		TargetLanguage: lang.EN,
		Level:          lang.Easy,
		Pending:        &session.Exercise{WordID: 3, Prompt: "Haus", Answer: "house"},
	}

	if err := quiz.PlayTurn(context.Background(), s, "  House ", rec.reply); err != nil {
		t.Fatalf("play turn: %v", err)
	}
	if ds.counts[3] != 1 {
		t.Fatalf("correct count = %d, want 1", ds.counts[3])
	}
	if len(rec.sent) != 2 {
		t.Fatalf("replies = %d, want affirmation plus next question", len(rec.sent))
	}
	if rec.sent[0] != msgCorrect {
		t.Fatalf("first reply = %q, want %q", rec.sent[0], msgCorrect)
	}
	if !strings.Contains(rec.sent[1], "Baum") || !strings.Contains(rec.sent[1], "English") {
		t.Fatalf("question = %q", rec.sent[1])
	}
	if s.Pending == nil || s.Pending.WordID != 7 {
		t.Fatalf("pending = %+v, want word 7", s.Pending)
	}
	checkPendingInvariant(t, s)
}

func TestQuizTurnWrongAnswer(t *testing.T) {
	ds := newFakeStore()
	ds.random = store.RandomWord{WordID: 7, Source: "Baum", Translation: "tree"}
	quiz := NewQuiz(ds, 10)
	rec := &replyRecorder{}
	s := &session.Session{
		SID:            "CH1",
		Status:         session.StatusAuthenticated,
		TargetLanguage: lang.EN,
		Pending:        &session.Exercise{WordID: 3, Prompt: "Haus", Answer: "house"},
	}

	if err := quiz.PlayTurn(context.Background(), s, "mouse", rec.reply); err != nil {
		t.Fatalf("play turn: %v", err)
	}
	if ds.counts[3] != 0 {
		t.Fatalf("counter incremented on a wrong answer")
	}
	if !strings.Contains(rec.sent[0], "house") {
		t.Fatalf("expected the correct answer in the reply, got %q", rec.sent[0])
	}
}

func TestQuizFailedFeedbackKeepsTurnOpen(t *testing.T) {
	ds := newFakeStore()
	ds.random = store.RandomWord{WordID: 7, Source: "Baum", Translation: "tree"}
	quiz := NewQuiz(ds, 10)
	rec := &replyRecorder{err: fmt.Errorf("send failed")}
	s := &session.Session{
		SID:            "CH1",
		Status:         session.StatusAuthenticated,
		TargetLanguage: lang.EN,
		Pending:        &session.Exercise{WordID: 3, Prompt: "Haus", Answer: "house"},
	}

	if err := quiz.PlayTurn(context.Background(), s, "house", rec.reply); err == nil {
		t.Fatal("expected the send failure to surface")
	}
	if s.Pending == nil || s.Pending.WordID != 3 {
		t.Fatalf("pending = %+v, want word 3 kept after failed feedback", s.Pending)
	}
	if ds.counts[3] != 0 {
		t.Fatalf("correct count = %d, want 0 before feedback is delivered", ds.counts[3])
	}

	// the next message answers the same exercise once sending recovers
	rec.err = nil
	if err := quiz.PlayTurn(context.Background(), s, "house", rec.reply); err != nil {
		t.Fatalf("play turn: %v", err)
	}
	if ds.counts[3] != 1 {
		t.Fatalf("correct count = %d, want 1", ds.counts[3])
	}
	if rec.sent[0] != msgCorrect {
		t.Fatalf("first reply = %q, want %q", rec.sent[0], msgCorrect)
	}
	if s.Pending == nil || s.Pending.WordID != 7 {
		t.Fatalf("pending = %+v, want the next question's word", s.Pending)
	}
}

func TestQuizRetryBudgetExhausted(t *testing.T) {
	ds := newFakeStore()
	ds.randomErr = fmt.Errorf("random word en: %w", store.ErrNotFound)
	quiz := NewQuiz(ds, 5)
	rec := &replyRecorder{}
	s := &session.Session{SID: "CH1", Status: session.StatusAuthenticated, TargetLanguage: lang.EN}

	err := quiz.PlayTurn(context.Background(), s, "anything", rec.reply)
	if err == nil || !strings.Contains(err.Error(), "no quiz content") {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
	if ds.randomCalls != 5 {
		t.Fatalf("random word calls = %d, want 5", ds.randomCalls)
	}
	if s.Pending != nil {
		t.Fatalf("pending = %+v, want nil after exhaustion", s.Pending)
	}
}

func TestQuizSkipsEmptyTranslations(t *testing.T) {
	ds := newFakeStore()
	ds.random = store.RandomWord{WordID: 9, Source: "Haus", Translation: "   "}
	quiz := NewQuiz(ds, 3)
	rec := &replyRecorder{}
	s := &session.Session{SID: "CH1", Status: session.StatusAuthenticated, TargetLanguage: lang.EN}

	err := quiz.PlayTurn(context.Background(), s, "x", rec.reply)
	if err == nil {
		t.Fatal("expected exhaustion when every translation is blank")
	}
	if ds.randomCalls != 3 {
		t.Fatalf("random word calls = %d, want 3", ds.randomCalls)
	}
}

func TestAnswersEqual(t *testing.T) {
	cases := []struct {
		given, expected string
		want            bool
	}{
		{"house", "house", true},
		{"House", "house", true},
		{"  HOUSE  ", "house", true},
		{"house", " house ", true},
		{"mouse", "house", false},
		{"", "house", false},
	}
	for _, tc := range cases {
		if got := answersEqual(tc.given, tc.expected); got != tc.want {
			t.Errorf("answersEqual(%q, %q) = %v, want %v", tc.given, tc.expected, got, tc.want)
		}
	}
}
