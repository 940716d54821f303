// Package lang defines the learning languages and difficulty levels shared
// by the bot, the content providers, and the persistence API.
package lang

import (
	"fmt"
	"strings"
)

// Language identifies one of the supported learning languages.
type Language string

const (
	DE Language = "DE"
	EN Language = "EN"
	ES Language = "ES"
	UA Language = "UA"
	RU Language = "RU"
)

// Languages lists every supported language in prompt order.
var Languages = []Language{DE, EN, ES, UA, RU}

// ParseLanguage resolves a user-provided token to a Language.
// Matching is case-insensitive and fails closed on unknown tokens.
func ParseLanguage(token string) (Language, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "DE":
		return DE, nil
	case "EN":
		return EN, nil
	case "ES":
		return ES, nil
	case "UA":
		return UA, nil
	case "RU":
		return RU, nil
	}
	return "", fmt.Errorf("lang: unknown language %q", token)
}

// Code returns the two-letter code used in API paths and payloads.
func (l Language) Code() string {
	return strings.ToLower(string(l))
}

// Name returns the English display name of the language.
func (l Language) Name() string {
	switch l {
	case DE:
		return "German"
	case EN:
		return "English"
	case ES:
		return "Spanish"
	case UA:
		return "Ukrainian"
	case RU:
		return "Russian"
	}
	return string(l)
}

// Level identifies a learning difficulty level.
type Level string

const (
	Easy Level = "EASY"
	Hard Level = "HARD"
)

// Levels lists the supported levels in prompt order.
var Levels = []Level{Easy, Hard}

// ParseLevel resolves a user-provided token to a Level.
// Matching is case-insensitive and fails closed on unknown tokens.
func ParseLevel(token string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "EASY":
		return Easy, nil
	case "HARD":
		return Hard, nil
	}
	return "", fmt.Errorf("lang: unknown level %q", token)
}

// ID returns the level identifier stored by the persistence API.
func (lv Level) ID() string {
	switch lv {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	}
	return strings.ToLower(string(lv))
}

// ParseLevelID resolves a stored level identifier back to a Level.
func ParseLevelID(id string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "easy":
		return Easy, nil
	case "hard":
		return Hard, nil
	}
	return "", fmt.Errorf("lang: unknown level id %q", id)
}

// WordColumns holds every translation column of a word record. The source
// word is always German; the other fields may be empty.
type WordColumns struct {
	DE string
	EN string
	ES string
	UA string
	RU string
}

// TranslationOf selects the translation column matching the language.
// The switch is exhaustive over the Language constants, replacing the
// original's dynamic attribute lookup.
func (l Language) TranslationOf(w WordColumns) string {
	switch l {
	case DE:
		return w.DE
	case EN:
		return w.EN
	case ES:
		return w.ES
	case UA:
		return w.UA
	case RU:
		return w.RU
	}
	return ""
}
