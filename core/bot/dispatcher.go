package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/memomate/memomate/core/chat"
	"github.com/memomate/memomate/core/logger"
	"github.com/memomate/memomate/core/session"
)

// maxReroutes bounds internal re-routing after a state transition within
// one inbound-message step. Four hops cover the longest legal chain
// (command, onboarding short-circuit, quiz) with room to spare.
const maxReroutes = 4

// Dispatcher drives the polling loop: it pulls new messages from the chat
// transport and routes each one to command handling, onboarding, or the
// quiz engine according to the session status.
type Dispatcher struct {
	channel      chat.Channel
	sessions     *session.Store
	onboarding   *Onboarding
	quiz         *Quiz
	systemAuthor string
	pollInterval time.Duration
	workers      int
	now          func() time.Time
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Channel      chat.Channel
	Sessions     *session.Store
	Onboarding   *Onboarding
	Quiz         *Quiz
	SystemAuthor string
	PollInterval time.Duration
	Workers      int
}

// NewDispatcher validates the wiring and builds the dispatcher.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Channel == nil {
		return nil, errors.New("bot: channel is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("bot: session store is required")
	}
	if opts.Onboarding == nil || opts.Quiz == nil {
		return nil, errors.New("bot: onboarding and quiz engines are required")
	}
	if opts.SystemAuthor == "" {
		return nil, errors.New("bot: system author identity is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Dispatcher{
		channel:      opts.Channel,
		sessions:     opts.Sessions,
		onboarding:   opts.Onboarding,
		quiz:         opts.Quiz,
		systemAuthor: opts.SystemAuthor,
		pollInterval: opts.PollInterval,
		workers:      opts.Workers,
		now:          time.Now,
	}, nil
}

// Run polls until ctx is cancelled. Each cycle captures the next watermark
// before fetching, then selects messages created at or after the previous
// one. A message arriving mid-fetch is therefore seen again next cycle
// rather than dropped: delivery is at-least-once within a process
// lifetime.
//
// The watermark only advances after a clean cycle. When fetching fails the
// previous watermark is kept, so messages created in the failed window are
// polled again instead of skipped. Handler failures are logged and
// skipped; only a transport authentication rejection stops the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.Info(ctx, "bot", "dispatch.start",
		slog.Duration("poll", d.pollInterval),
		slog.Int("workers", d.workers),
	)
	watermark := d.now().UTC().Truncate(time.Second)
	for {
		next := d.now().UTC().Truncate(time.Second)
		if err := d.Cycle(ctx, watermark); err != nil {
			if chat.IsAuthError(err) {
				logger.Error(ctx, "bot", "dispatch.fatal",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
				return err
			}
			if ctx.Err() != nil {
				break
			}
			logger.Warn(ctx, "bot", "dispatch.cycle",
				slog.String("status", "skip"),
				slog.String("err", err.Error()),
			)
		} else {
			watermark = next
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "bot", "dispatch.stop", slog.String("status", "ok"))
			return nil
		case <-time.After(d.pollInterval):
		}
	}
	logger.Info(ctx, "bot", "dispatch.stop", slog.String("status", "ok"))
	return nil
}

// Cycle runs one poll cycle against the watermark. Conversations are
// mutually independent and fan out to a bounded worker pool; a session is
// only ever touched by the single worker holding its conversation, so no
// per-session locking is needed.
func (d *Dispatcher) Cycle(ctx context.Context, since time.Time) error {
	start := time.Now()
	conversations, err := d.channel.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) == 0 {
		return nil
	}

	workers := d.workers
	if workers > len(conversations) {
		workers = len(conversations)
	}

	jobs := make(chan chat.Conversation)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for conv := range jobs {
				if err := d.handleConversation(ctx, conv, since); err != nil {
					mu.Lock()
					// an auth rejection must win so Run sees it as fatal
					if firstErr == nil || (chat.IsAuthError(err) && !chat.IsAuthError(firstErr)) {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for _, conv := range conversations {
		jobs <- conv
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	logger.Debug(ctx, "bot", "dispatch.cycle",
		slog.String("status", "ok"),
		slog.Int("conversations", len(conversations)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// handleConversation processes one conversation's new messages. Handler
// errors are contained here; a failed message fetch propagates so the
// cycle reports it and the watermark is held. A panic in a handler is
// confined to this conversation.
func (d *Dispatcher) handleConversation(ctx context.Context, conv chat.Conversation, since time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "bot", "dispatch.panic",
				slog.String("status", "fail"),
				slog.String("conv_sid", conv.SID),
				slog.String("err", fmt.Sprint(r)),
			)
			err = nil
		}
	}()

	s := d.sessions.GetOrCreate(conv.SID)

	messages, lerr := d.channel.ListMessages(ctx, conv.SID, since)
	if lerr != nil {
		return fmt.Errorf("list messages %s: %w", conv.SID, lerr)
	}

	for _, msg := range messages {
		if msg.Author == d.systemAuthor {
			continue
		}
		body := strings.TrimSpace(msg.Body)
		if body == "" {
			continue
		}
		mctx := logger.WithConversationMeta(ctx, conv.SID, msg.SID)
		mctx = logger.WithRID(mctx, logger.BuildRID(conv.SID, msg.SID))
		if herr := d.handleInbound(mctx, s, body); herr != nil {
			if chat.IsAuthError(herr) {
				return herr
			}
			logger.Warn(mctx, "bot", "dispatch.message",
				slog.String("status", "skip"),
				slog.String("session_status", s.Status.String()),
				slog.String("payload", logger.SanitizeLimit(body, 64)),
				slog.String("err", herr.Error()),
			)
		}
	}
	return nil
}

// handleInbound routes one message through the state machine. A handler
// that transitions the session may request one re-route so the message is
// re-evaluated against the new status; the hop count is bounded to keep a
// broken transition table from looping forever.
func (d *Dispatcher) handleInbound(ctx context.Context, s *session.Session, body string) error {
	s.LastMessage = body
	reply := func(ctx context.Context, text string) error {
		return d.channel.Send(ctx, s.SID, text)
	}

	for hop := 0; hop < maxReroutes; hop++ {
		switch {
		case strings.HasPrefix(body, commandPrefix):
			reroute, err := d.runCommand(ctx, s, strings.TrimPrefix(body, commandPrefix), reply)
			if err != nil {
				return err
			}
			if !reroute {
				return nil
			}
			// re-dispatch the transition itself, not the command text
			body = ""

		case s.Onboarding():
			reroute, err := d.onboarding.Step(ctx, s, body, reply)
			if err != nil {
				return err
			}
			if !reroute {
				return nil
			}

		case s.Playing():
			err := d.quiz.PlayTurn(ctx, s, body, reply)
			if errors.Is(err, ErrNoContent) {
				return reply(ctx, msgNoContent)
			}
			return err

		default:
			return reply(ctx, msgUnknown)
		}
	}

	logger.Warn(ctx, "bot", "dispatch.reroute_limit",
		slog.String("status", "skip"),
		slog.String("session_status", s.Status.String()),
	)
	return nil
}
