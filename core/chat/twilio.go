package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/twilio/twilio-go"
	conversations "github.com/twilio/twilio-go/rest/conversations/v1"
)

const listPageSize = 50

// TwilioOptions configures the Conversations client.
type TwilioOptions struct {
	AccountSID      string
	APIKey          string
	APISecret       string
	ConversationSID string // conversation service SID
	SystemAuthor    string
}

// TwilioChannel implements Channel over the Twilio Conversations REST API.
type TwilioChannel struct {
	api        *twilio.RestClient
	serviceSID string
	author     string
}

// NewTwilioChannel builds a Conversations client authenticated with an API
// key pair, matching how the bot was registered with Twilio.
func NewTwilioChannel(opts TwilioOptions) (*TwilioChannel, error) {
	if opts.AccountSID == "" || opts.APIKey == "" || opts.APISecret == "" {
		return nil, fmt.Errorf("chat: twilio credentials are incomplete")
	}
	if opts.ConversationSID == "" {
		return nil, fmt.Errorf("chat: conversation service sid is required")
	}
	api := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   opts.APIKey,
		Password:   opts.APISecret,
		AccountSid: opts.AccountSID,
	})
	return &TwilioChannel{
		api:        api,
		serviceSID: opts.ConversationSID,
		author:     opts.SystemAuthor,
	}, nil
}

// SystemAuthor returns the identity used for outbound messages.
func (t *TwilioChannel) SystemAuthor() string { return t.author }

// ListConversations returns every conversation of the service.
func (t *TwilioChannel) ListConversations(ctx context.Context) ([]Conversation, error) {
	params := &conversations.ListServiceConversationParams{}
	params.SetPageSize(listPageSize)

	records, err := t.api.ConversationsV1.ListServiceConversation(t.serviceSID, params)
	if err != nil {
		return nil, fmt.Errorf("chat: list conversations: %w", err)
	}

	out := make([]Conversation, 0, len(records))
	for _, rec := range records {
		if rec.Sid == nil {
			continue
		}
		out = append(out, Conversation{SID: *rec.Sid})
	}
	return out, nil
}

// ListMessages returns the conversation messages created at or after since,
// oldest first. The since filter is applied client-side; the Conversations
// API has no creation-time query parameter.
func (t *TwilioChannel) ListMessages(ctx context.Context, conversationSID string, since time.Time) ([]Message, error) {
	params := &conversations.ListServiceConversationMessageParams{}
	params.SetPageSize(listPageSize)

	records, err := t.api.ConversationsV1.ListServiceConversationMessage(t.serviceSID, conversationSID, params)
	if err != nil {
		return nil, fmt.Errorf("chat: list messages %s: %w", conversationSID, err)
	}

	out := make([]Message, 0, len(records))
	for _, rec := range records {
		if rec.DateCreated == nil || rec.DateCreated.Before(since) {
			continue
		}
		m := Message{CreatedAt: *rec.DateCreated}
		if rec.Sid != nil {
			m.SID = *rec.Sid
		}
		if rec.Author != nil {
			m.Author = *rec.Author
		}
		if rec.Body != nil {
			m.Body = *rec.Body
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Send posts a message authored by the system identity.
func (t *TwilioChannel) Send(ctx context.Context, conversationSID, body string) error {
	params := &conversations.CreateServiceConversationMessageParams{}
	params.SetAuthor(t.author)
	params.SetBody(body)

	if _, err := t.api.ConversationsV1.CreateServiceConversationMessage(t.serviceSID, conversationSID, params); err != nil {
		return fmt.Errorf("chat: send to %s: %w", conversationSID, err)
	}
	return nil
}
