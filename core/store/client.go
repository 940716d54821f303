// Package store is the client of the MemoMate persistence API. It covers
// exactly the operations the bot core needs: user records, word records,
// and per-user progress counters.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/netutil"
)

var (
	// ErrNotFound signals a missing user or an empty random-word result.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidLevel signals a level id the API refuses to accept.
	ErrInvalidLevel = errors.New("store: invalid level")
)

// User is the persisted user record keyed by conversation sid.
type User struct {
	ID             string
	Level          lang.Level
	SourceLanguage lang.Language
	TargetLanguage lang.Language
}

// RandomWord is one quiz candidate returned by the API.
type RandomWord struct {
	WordID      int64
	Source      string
	Translation string
}

// Client talks to the persistence API over HTTP. Every call carries a
// per-request timeout so one unresponsive upstream cannot stall a poll
// cycle.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient builds a store client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

type userPayload struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	LevelID   string `json:"level_id"`
	FromCode2 string `json:"from_code2"`
	ToCode2   string `json:"to_code2"`
}

// CreateUser persists a newly onboarded user.
func (c *Client) CreateUser(ctx context.Context, id string, level lang.Level, source, target lang.Language) error {
	payload := userPayload{
		UserID:    id,
		LevelID:   level.ID(),
		FromCode2: source.Code(),
		ToCode2:   target.Code(),
	}
	resp, err := c.post(ctx, "/users/create", payload)
	if err != nil {
		return err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("create user %s: %w", id, ErrInvalidLevel)
	}
	return fmt.Errorf("create user %s: %s", id, resp.Status)
}

// GetUser fetches the stored record for a conversation sid.
// Returns ErrNotFound for unknown users.
func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	resp, err := c.get(ctx, "/users/"+url.PathEscape(id))
	if err != nil {
		return User{}, err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return User{}, fmt.Errorf("get user %s: %w", id, ErrNotFound)
	default:
		return User{}, fmt.Errorf("get user %s: %s", id, resp.Status)
	}

	var body userPayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, fmt.Errorf("get user %s: decode: %w", id, err)
	}
	level, err := lang.ParseLevelID(body.LevelID)
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	source, err := lang.ParseLanguage(body.FromCode2)
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	target, err := lang.ParseLanguage(body.ToCode2)
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return User{ID: body.UserID, Level: level, SourceLanguage: source, TargetLanguage: target}, nil
}

// HasWord reports whether at least one word with a translation exists for
// the language and level. A 404 means the vocabulary was never generated.
func (c *Client) HasWord(ctx context.Context, target lang.Language, level lang.Level) (bool, error) {
	path := fmt.Sprintf("/words/translation/%s/%s", target.Code(), level.ID())
	resp, err := c.get(ctx, path)
	if err != nil {
		return false, err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("has word %s/%s: %s", target.Code(), level.ID(), resp.Status)
	}

	var body struct {
		HasTranslation bool `json:"has_translation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("has word %s/%s: decode: %w", target.Code(), level.ID(), err)
	}
	return body.HasTranslation, nil
}

type wordPayload struct {
	LevelID string  `json:"level_id"`
	DE      string  `json:"de"`
	EN      *string `json:"en"`
	ES      *string `json:"es"`
	UA      *string `json:"ua"`
	RU      *string `json:"ru"`
}

// CreateWord stores a source word with its translation in one language.
func (c *Client) CreateWord(ctx context.Context, source, translation string, target lang.Language, level lang.Level) error {
	payload := wordPayload{LevelID: level.ID(), DE: source}
	switch target {
	case lang.EN:
		payload.EN = &translation
	case lang.ES:
		payload.ES = &translation
	case lang.UA:
		payload.UA = &translation
	case lang.RU:
		payload.RU = &translation
	case lang.DE:
		payload.DE = source
	}
	resp, err := c.post(ctx, "/words/create/", payload)
	if err != nil {
		return err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("create word %q: %w", source, ErrInvalidLevel)
	}
	return fmt.Errorf("create word %q: %s", source, resp.Status)
}

// RandomWord picks one random word with a non-empty translation in the
// target language. Returns ErrNotFound when the API exhausted its attempts.
func (c *Client) RandomWord(ctx context.Context, target lang.Language) (RandomWord, error) {
	resp, err := c.get(ctx, "/words/random/"+target.Code())
	if err != nil {
		return RandomWord{}, err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return RandomWord{}, fmt.Errorf("random word %s: %w", target.Code(), ErrNotFound)
	default:
		return RandomWord{}, fmt.Errorf("random word %s: %s", target.Code(), resp.Status)
	}

	var body struct {
		WordID      int64  `json:"word_id"`
		DE          string `json:"de"`
		Translation string `json:"translation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RandomWord{}, fmt.Errorf("random word %s: decode: %w", target.Code(), err)
	}
	return RandomWord{WordID: body.WordID, Source: body.DE, Translation: body.Translation}, nil
}

// IncrementCorrectCount bumps the per-user counter for a word and returns
// the new value.
func (c *Client) IncrementCorrectCount(ctx context.Context, userID string, wordID int64) (int, error) {
	path := fmt.Sprintf("/words/update_correct_count/%s/%d", url.PathEscape(userID), wordID)
	resp, err := c.post(ctx, path, nil)
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("increment %s/%d: %s", userID, wordID, resp.Status)
	}

	var body struct {
		NewCount int `json:"new_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("increment %s/%d: decode: %w", userID, wordID, err)
	}
	return body.NewCount, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("store: encode payload: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, data)
}

// do issues the request with a per-call timeout. A transient dial or
// timeout failure gets a single immediate retry; everything else surfaces
// to the caller.
func (c *Client) do(ctx context.Context, method, path string, data []byte) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	attempt := func() (*http.Response, error) {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("store: build request: %w", err)
		}
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.http.Do(req)
	}

	resp, err := attempt()
	if err != nil && ctx.Err() == nil && netutil.ShouldRetry(err) {
		resp, err = attempt()
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("store: %s: %w", path, err)
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the request context when the response body closes.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
