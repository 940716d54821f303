package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/memomate/memomate/core/lang"
)

const defaultDeepLBaseURL = "https://api-free.deepl.com"

// Translator converts a single word between languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target lang.Language) (string, error)
}

// DeepLTranslator implements Translator against the DeepL v2 REST API.
type DeepLTranslator struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewDeepLTranslator builds a translator. baseURL may be empty to use the
// free-tier endpoint.
func NewDeepLTranslator(apiKey, baseURL string, timeout time.Duration) *DeepLTranslator {
	if baseURL == "" {
		baseURL = defaultDeepLBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DeepLTranslator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Translate translates one word. Empty results are reported as errors so
// callers never store a blank translation.
func (d *DeepLTranslator) Translate(ctx context.Context, text string, source, target lang.Language) (string, error) {
	form := url.Values{}
	form.Set("auth_key", d.apiKey)
	form.Set("text", text)
	form.Set("source_lang", strings.ToUpper(source.Code()))
	form.Set("target_lang", strings.ToUpper(target.Code()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("content: build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("content: translate %q: %w", text, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content: translate %q: %s", text, resp.Status)
	}

	var body struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("content: translate %q: decode: %w", text, err)
	}
	if len(body.Translations) == 0 || strings.TrimSpace(body.Translations[0].Text) == "" {
		return "", fmt.Errorf("content: translate %q: empty result", text)
	}
	return body.Translations[0].Text, nil
}
