package meta

import (
	"context"
	"fmt"

	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"github.com/suziewongzie/UniChat/internal/platform/graph"
	"go.uber.org/zap"
)

// Adapter serves one social-graph surface (Messenger or Instagram) over
// the shared Client.
type Adapter struct {
	client  *Client
	surface model.Platform
}

// NewAdapter creates a surface adapter. surface must be model.Messenger or
// model.Instagram.
func NewAdapter(c *Client, surface model.Platform) *Adapter {
	return &Adapter{client: c, surface: surface}
}

// Platform returns the surface this adapter serves.
func (a *Adapter) Platform() model.Platform { return a.surface }

// IsConfigured reports whether the shared session is configured.
func (a *Adapter) IsConfigured() bool {
	return a.client.creds.IsConfigured(a.surface)
}

// FetchContacts lists the surface's conversations as canonical contacts.
func (a *Adapter) FetchContacts(ctx context.Context) ([]model.Contact, error) {
	token := a.client.token()
	if token == "" {
		return nil, platform.ErrUnauthenticated
	}
	resource := a.client.resourceID(a.surface)
	if resource == "" {
		return nil, fmt.Errorf("%w: %s surface not linked", platform.ErrUnauthenticated, a.surface)
	}

	query := map[string]string{
		"fields": "participants,updated_time,unread_count,last_message",
	}
	if a.surface == model.Messenger {
		query["fields"] = "participants,updated_time,unread_count,snippet"
		query["platform"] = "messenger"
	}

	convs, err := a.client.listConversations(ctx, token, resource, query)
	if err != nil {
		return nil, err
	}

	selfIDs := a.client.selfIDs()
	contacts := make([]model.Contact, 0, len(convs))
	for _, conv := range convs {
		contacts = append(contacts, conv.ToContact(a.surface, selfIDs...))
	}
	return contacts, nil
}

// FetchMessages returns a conversation's history, oldest first. The Graph
// API returns newest first, so the listing is reversed.
func (a *Adapter) FetchMessages(ctx context.Context, contactID string) ([]model.Message, error) {
	token := a.client.token()
	if token == "" {
		return nil, platform.ErrUnauthenticated
	}

	var page graph.MessagePage
	if err := a.client.get(ctx, token, "/"+contactID+"/messages", map[string]string{
		"fields": "message,created_time,from,attachments",
	}, &page); err != nil {
		return nil, err
	}

	selfIDs := a.client.selfIDs()
	msgs := make([]model.Message, 0, len(page.Data))
	for i := len(page.Data) - 1; i >= 0; i-- {
		msgs = append(msgs, page.Data[i].ToMessage(selfIDs))
	}
	return msgs, nil
}

// Send delivers a text message through the page's Send API. Both surfaces
// send via the page; the recipient id names the conversation partner.
func (a *Adapter) Send(ctx context.Context, contactID, text, replyToID string) error {
	token := a.client.token()
	if token == "" {
		return platform.ErrUnauthenticated
	}
	pageID := a.client.creds.Get(model.Messenger)[creds.FieldPageID]
	if pageID == "" {
		return fmt.Errorf("%w: no page linked", platform.ErrUnauthenticated)
	}

	payload := sendPayload{
		Recipient: recipient{ID: contactID},
		Message:   messageBody{Text: text},
	}
	if replyToID != "" {
		payload.Message.ReplyTo = &replyTo{MID: replyToID}
	}

	if err := a.client.post(ctx, token, "/"+pageID+"/messages", payload); err != nil {
		return err
	}
	a.client.logger.Debug("message sent",
		zap.String("surface", string(a.surface)),
		zap.String("conversation", contactID))
	return nil
}
