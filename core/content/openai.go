// Package content produces vocabulary for a learning language and level.
// Word lists come from an OpenAI chat model; translations come from DeepL.
package content

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/sashabaranov/go-openai"

	"github.com/memomate/memomate/core/lang"
)

// Generator asks a chat model for a word list in the learner's native
// language.
type Generator interface {
	GenerateWordList(ctx context.Context, native, target lang.Language, level lang.Level, count int) ([]string, error)
}

// OpenAIGenerator implements Generator with the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given model. baseURL may be
// empty to use the public endpoint.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateWordList requests count words suited to the level, returned in
// the native language, ordered by the model's numbering.
func (g *OpenAIGenerator) GenerateWordList(ctx context.Context, native, target lang.Language, level lang.Level, count int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Return a dictionary with an int as primary key for each word of a list of %d words. "+
			"Assume the person speaks %s and wants to learn %s at %s level. "+
			"Return the list in the person's native language without translations. "+
			"Only return the dictionary, starting your response with { and ending with }.",
		count, native.Name(), target.Name(), level.ID(),
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("content: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("content: chat completion returned no choices")
	}

	words, err := parseWordList(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(words) > count {
		words = words[:count]
	}
	return words, nil
}

var wordEntryRe = regexp.MustCompile(`(\d+)\s*:\s*["']([^"']+)["']`)

// parseWordList extracts the numbered entries from a dictionary-shaped
// model response. The model occasionally wraps the payload in prose or
// code fences, so anything outside key/value pairs is ignored.
func parseWordList(raw string) ([]string, error) {
	matches := wordEntryRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("content: no word entries in model response")
	}

	type entry struct {
		key  int
		word string
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		key, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, entry{key: key, word: m[2]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, e.word)
	}
	return words, nil
}
