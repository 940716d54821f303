package logger

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

// contextKey is a private type to avoid collisions in context.
type contextKey string

const (
	ctxRID     contextKey = "rid"
	ctxConvSID contextKey = "conv_sid"
	ctxMsgSID  contextKey = "msg_sid"
	ctxLogger  contextKey = "logger"
	ctxHandler contextKey = "handler"
)

// WithLogger stores the provided slog.Logger in context for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext extracts slog.Logger from context or returns the global default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if v := ctx.Value(ctxLogger); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches a message correlation id into context.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom extracts rid from context if present.
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxRID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithConversationMeta attaches the conversation and message identifiers.
func WithConversationMeta(ctx context.Context, convSID, msgSID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if convSID != "" {
		ctx = context.WithValue(ctx, ctxConvSID, convSID)
	}
	if msgSID != "" {
		ctx = context.WithValue(ctx, ctxMsgSID, msgSID)
	}
	return ctx
}

// ConversationFrom extracts the conversation sid from context.
func ConversationFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxConvSID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MessageFrom extracts the message sid from context.
func MessageFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxMsgSID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithHandler stores handler identifier in context for downstream logs.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns handler identifier from context if present.
func HandlerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxHandler); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Sanitize trims non-printable runes from s to keep logs clean.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeLimit applies Sanitize and limits the output length in runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	r := []rune(cleaned)
	if len(r) <= max {
		return cleaned
	}
	return string(r[:max])
}

// BuildRID returns a correlation identifier combining the conversation and
// message sids.
func BuildRID(convSID, msgSID string) string {
	if msgSID == "" {
		return convSID
	}
	return convSID + ":" + msgSID
}

// CompactRID shortens each sid segment of a rid to its tail for KV output.
// Twilio sids share long constant prefixes; the tail is what tells them
// apart.
func CompactRID(rid string) string {
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, ":")
	for i, p := range parts {
		if len(p) > 8 {
			parts[i] = p[:2] + ".." + p[len(p)-6:]
		}
	}
	return strings.Join(parts, ":")
}
