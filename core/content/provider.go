package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/logger"
)

// Pair is one generated word with its translation.
type Pair struct {
	Source      string
	Translation string
}

// Provider combines word generation and translation into one vocabulary
// builder, the shape the onboarding flow consumes.
type Provider struct {
	generator  Generator
	translator Translator
}

// NewProvider wires a generator and a translator together.
func NewProvider(g Generator, t Translator) *Provider {
	return &Provider{generator: g, translator: t}
}

// BuildVocabulary generates count words in the native language and
// translates each into the target language. A word whose translation fails
// is skipped rather than failing the whole batch; an entirely empty result
// is an error.
func (p *Provider) BuildVocabulary(ctx context.Context, native, target lang.Language, level lang.Level, count int) ([]Pair, error) {
	words, err := p.generator.GenerateWordList(ctx, native, target, level, count)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(words))
	for _, w := range words {
		translated, err := p.translator.Translate(ctx, w, native, target)
		if err != nil {
			logger.Warn(ctx, "content", "translate.skip",
				slog.String("status", "fail"),
				slog.String("word", logger.SanitizeLimit(w, 64)),
				slog.String("err", err.Error()),
			)
			continue
		}
		pairs = append(pairs, Pair{Source: w, Translation: translated})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("content: no words could be translated to %s", target.Code())
	}
	return pairs, nil
}
