package bot

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/logger"
	"github.com/memomate/memomate/core/session"
	"github.com/memomate/memomate/core/store"
)

// Onboarding drives a conversation from first contact to an authenticated,
// configured session.
type Onboarding struct {
	store      DataStore
	vocabulary Vocabulary
	base       lang.Language
	vocabSize  int
}

// NewOnboarding builds the onboarding state machine. base is the learner's
// known language, vocabSize the number of words generated per language and
// level on first completion.
func NewOnboarding(ds DataStore, v Vocabulary, base lang.Language, vocabSize int) *Onboarding {
	if vocabSize <= 0 {
		vocabSize = 10
	}
	return &Onboarding{store: ds, vocabulary: v, base: base, vocabSize: vocabSize}
}

// Step applies one inbound message to the onboarding state machine. It
// returns true when the session reached StatusAuthenticated and the message
// should be re-routed to the quiz engine.
//
// A stored user record always wins: known users skip onboarding entirely,
// on every message, so a restarted process re-authenticates them from the
// first contact.
func (o *Onboarding) Step(ctx context.Context, s *session.Session, msg string, reply ReplyFunc) (bool, error) {
	user, err := o.store.GetUser(ctx, s.SID)
	switch {
	case err == nil:
		s.TargetLanguage = user.TargetLanguage
		s.Level = user.Level
		s.Transition(session.StatusAuthenticated)
		logger.Info(ctx, "bot", "onboarding.known_user",
			slog.String("status", "ok"),
			slog.String("lang", string(user.TargetLanguage)),
			slog.String("level_id", user.Level.ID()),
		)
		return true, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("onboarding: lookup user: %w", err)
	}

	switch s.Status {
	case session.StatusUnauthenticated:
		s.Transition(session.StatusSelectLanguage)
		return false, reply(ctx, msgWelcome+"\n"+msgLanguagePrompt)

	case session.StatusSelectLanguage:
		target, perr := lang.ParseLanguage(msg)
		if perr != nil {
			return false, reply(ctx, msgLanguagePrompt)
		}
		if target == o.base {
			// No translation column exists for the base language; a
			// learner picking it could never get a vocabulary.
			return false, reply(ctx, msgBaseLanguage+"\n"+msgLanguagePrompt)
		}
		s.TargetLanguage = target
		s.Transition(session.StatusSelectLevel)
		return false, reply(ctx, msgLevelPrompt)

	case session.StatusSelectLevel:
		level, perr := lang.ParseLevel(msg)
		if perr != nil {
			return false, reply(ctx, msgLevelPrompt)
		}
		s.Level = level
		if err := o.complete(ctx, s); err != nil {
			// Stay in StatusSelectLevel; the next valid level token
			// retries completion. A partially created user is picked up
			// by the GetUser short-circuit above.
			return false, err
		}
		s.Transition(session.StatusAuthenticated)
		logger.Info(ctx, "bot", "onboarding.done",
			slog.String("status", "ok"),
			slog.String("lang", string(s.TargetLanguage)),
			slog.String("level_id", s.Level.ID()),
		)
		return true, nil
	}
	return false, nil
}

// complete persists the user record and makes sure a vocabulary exists for
// the chosen language and level. The existence check gates generation at
// the "any translated word exists" granularity, which keeps the step
// idempotent across partial failures.
func (o *Onboarding) complete(ctx context.Context, s *session.Session) error {
	if err := o.store.CreateUser(ctx, s.SID, s.Level, o.base, s.TargetLanguage); err != nil {
		return fmt.Errorf("onboarding: create user: %w", err)
	}

	has, err := o.store.HasWord(ctx, s.TargetLanguage, s.Level)
	if err != nil {
		return fmt.Errorf("onboarding: check vocabulary: %w", err)
	}
	if has {
		return nil
	}

	pairs, err := o.vocabulary.BuildVocabulary(ctx, o.base, s.TargetLanguage, s.Level, o.vocabSize)
	if err != nil {
		return fmt.Errorf("onboarding: build vocabulary: %w", err)
	}
	for _, p := range pairs {
		if err := o.store.CreateWord(ctx, p.Source, p.Translation, s.TargetLanguage, s.Level); err != nil {
			return fmt.Errorf("onboarding: store word %q: %w", p.Source, err)
		}
	}
	logger.Info(ctx, "bot", "onboarding.vocabulary",
		slog.String("status", "ok"),
		slog.String("lang", string(s.TargetLanguage)),
		slog.String("level_id", s.Level.ID()),
		slog.Int("words", len(pairs)),
	)
	return nil
}
