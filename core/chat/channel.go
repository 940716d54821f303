// Package chat adapts the Twilio Conversations transport to the small
// surface the dispatcher needs: list conversations, list new messages,
// send a reply.
package chat

import (
	"context"
	"errors"
	"net/http"
	"time"

	twilioclient "github.com/twilio/twilio-go/client"
)

// Conversation is a handle to one remote conversation.
type Conversation struct {
	SID string
}

// Message is a single inbound or outbound conversation message.
type Message struct {
	SID       string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Channel is the transport contract consumed by the dispatcher.
type Channel interface {
	// ListConversations returns every active conversation handle.
	ListConversations(ctx context.Context) ([]Conversation, error)
	// ListMessages returns the messages of a conversation created at or
	// after since, in ascending creation order.
	ListMessages(ctx context.Context, conversationSID string, since time.Time) ([]Message, error)
	// Send posts a reply authored by the bot's system identity.
	Send(ctx context.Context, conversationSID, body string) error
}

// IsAuthError reports whether a transport error is an authentication or
// authorization rejection. Such errors are unrecoverable for the polling
// loop and must stop it.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var rest *twilioclient.TwilioRestError
	if errors.As(err, &rest) {
		return rest.Status == http.StatusUnauthorized || rest.Status == http.StatusForbidden
	}
	return false
}
