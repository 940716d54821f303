// Package bot is the session orchestration core: the polling dispatcher,
// the onboarding state machine, and the quiz engine. It consumes the
// persistence API, the content providers, and the chat transport through
// narrow interfaces so each collaborator can be replaced in tests.
package bot

import (
	"context"

	"github.com/memomate/memomate/core/content"
	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/store"
)

// DataStore is the persistence surface consumed by onboarding and quiz.
// *store.Client satisfies it.
type DataStore interface {
	CreateUser(ctx context.Context, id string, level lang.Level, source, target lang.Language) error
	GetUser(ctx context.Context, id string) (store.User, error)
	HasWord(ctx context.Context, target lang.Language, level lang.Level) (bool, error)
	CreateWord(ctx context.Context, source, translation string, target lang.Language, level lang.Level) error
	RandomWord(ctx context.Context, target lang.Language) (store.RandomWord, error)
	IncrementCorrectCount(ctx context.Context, userID string, wordID int64) (int, error)
}

// Vocabulary builds word/translation pairs for a language and level.
// *content.Provider satisfies it.
type Vocabulary interface {
	BuildVocabulary(ctx context.Context, native, target lang.Language, level lang.Level, count int) ([]content.Pair, error)
}

// ReplyFunc sends one outbound message to the conversation being handled.
type ReplyFunc func(ctx context.Context, body string) error
