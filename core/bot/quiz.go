package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/logger"
	"github.com/memomate/memomate/core/session"
	"github.com/memomate/memomate/core/store"
)

// ErrNoContent signals that no usable quiz word exists for the session's
// language after the retry budget was exhausted.
var ErrNoContent = errors.New("bot: no quiz content available")

// Quiz evaluates answers and issues the next question.
type Quiz struct {
	store    DataStore
	attempts int
}

// NewQuiz builds the quiz engine. attempts caps the random-word retries
// per turn.
func NewQuiz(ds DataStore, attempts int) *Quiz {
	if attempts <= 0 {
		attempts = 10
	}
	return &Quiz{store: ds, attempts: attempts}
}

// PlayTurn runs one quiz turn: evaluate the pending answer if one is
// outstanding, then pick and send the next question. Answer comparison is
// trimmed and case-folded. Word selection is randomized with replacement;
// repetition across turns is expected given the small vocabulary.
func (q *Quiz) PlayTurn(ctx context.Context, s *session.Session, msg string, reply ReplyFunc) error {
	if s.Pending != nil {
		pending := s.Pending
		correct := answersEqual(msg, pending.Answer)
		feedback := msgCorrect
		if !correct {
			feedback = fmt.Sprintf(msgIncorrectFmt, pending.Answer)
		}
		// The exercise stays pending until the feedback is delivered; a
		// failed send leaves the turn open for the learner's next message
		// instead of silently recording the outcome.
		if err := reply(ctx, feedback); err != nil {
			return err
		}
		s.Pending = nil
		if correct {
			count, err := q.store.IncrementCorrectCount(ctx, s.SID, pending.WordID)
			if err != nil {
				return fmt.Errorf("quiz: increment progress: %w", err)
			}
			logger.Info(ctx, "bot", "quiz.correct",
				slog.String("status", "ok"),
				slog.Int64("word_id", pending.WordID),
				slog.Int("count", count),
			)
		}
	}

	word, err := q.pick(ctx, s.TargetLanguage)
	if err != nil {
		return err
	}
	s.Pending = &session.Exercise{
		WordID: word.WordID,
		Prompt: word.Source,
		Answer: word.Translation,
	}
	return reply(ctx, fmt.Sprintf(msgQuestionFmt, word.Source, s.TargetLanguage.Name()))
}

// pick fetches a random word with a non-empty translation, retrying up to
// the configured cap before reporting ErrNoContent.
func (q *Quiz) pick(ctx context.Context, target lang.Language) (store.RandomWord, error) {
	for attempt := 1; attempt <= q.attempts; attempt++ {
		word, err := q.store.RandomWord(ctx, target)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return store.RandomWord{}, fmt.Errorf("quiz: random word: %w", err)
		}
		if strings.TrimSpace(word.Translation) == "" {
			continue
		}
		return word, nil
	}
	logger.Warn(ctx, "bot", "quiz.exhausted",
		slog.String("status", "fail"),
		slog.String("lang", string(target)),
		slog.Int("attempts", q.attempts),
	)
	return store.RandomWord{}, ErrNoContent
}

func answersEqual(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}
