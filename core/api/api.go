// Package api implements the MemoMate persistence service: user records,
// word records with per-language translations, and per-user progress
// counters, served over HTTP for the bot's store client.
package api

import (
	"context"
	"errors"
)

// ErrNotFound signals a missing row.
var ErrNotFound = errors.New("api: not found")

// User is one row of the users table.
type User struct {
	UserID    string `db:"user_id" json:"user_id"`
	UserName  string `db:"user_name" json:"user_name"`
	LevelID   string `db:"level_id" json:"level_id"`
	FromCode2 string `db:"from_code2" json:"from_code2"`
	ToCode2   string `db:"to_code2" json:"to_code2"`
}

// Word is one row of the words table. The source word is German; the
// translation columns are nullable.
type Word struct {
	WordID  int64   `db:"word_id" json:"word_id"`
	LevelID string  `db:"level_id" json:"level_id"`
	DE      string  `db:"de" json:"de"`
	EN      *string `db:"en" json:"en"`
	ES      *string `db:"es" json:"es"`
	UA      *string `db:"ua" json:"ua"`
	RU      *string `db:"ru" json:"ru"`
}

// RandomWord is one random-selection candidate with its translation in the
// requested language.
type RandomWord struct {
	WordID      int64  `db:"word_id" json:"word_id"`
	DE          string `db:"de" json:"de"`
	Translation string `db:"translation" json:"translation"`
}

// Repository is the storage surface behind the HTTP handlers.
type Repository interface {
	// LevelExists reports whether a level id is seeded.
	LevelExists(ctx context.Context, levelID string) (bool, error)
	// CreateUser inserts a user row.
	CreateUser(ctx context.Context, u User) error
	// GetUser fetches a user row or ErrNotFound.
	GetUser(ctx context.Context, userID string) (User, error)
	// CreateWord inserts a word row and returns it with its generated id.
	CreateWord(ctx context.Context, w Word) (Word, error)
	// CountWords reports how many words exist for a level.
	CountWords(ctx context.Context, levelID string) (int, error)
	// HasTranslation reports whether at least one word of the level has a
	// non-empty translation in the language column.
	HasTranslation(ctx context.Context, levelID, code string) (bool, error)
	// RandomWord picks one random word whose translation column is set.
	// Returns ErrNotFound when no candidate exists.
	RandomWord(ctx context.Context, code string) (RandomWord, error)
	// IncrementCorrectCount upserts the per-user counter for a word and
	// returns the new value.
	IncrementCorrectCount(ctx context.Context, userID string, wordID int64) (int, error)
}

// translationCodes are the languages a word can be translated into. German
// is the source column, never a translation target here.
var translationCodes = map[string]struct{}{
	"en": {},
	"es": {},
	"ua": {},
	"ru": {},
}

// validTranslationCode reports whether code names a translation column.
func validTranslationCode(code string) bool {
	_, ok := translationCodes[code]
	return ok
}
