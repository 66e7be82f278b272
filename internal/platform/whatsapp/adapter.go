// Package whatsapp implements the cloud-messaging adapter over the
// WhatsApp Business Cloud HTTP API.
package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"github.com/suziewongzie/UniChat/internal/platform/graph"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production Cloud API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v18.0"

// Adapter talks to the WhatsApp Cloud API. Credentials are borrowed
// read-only from the credential store on every call so a reconfigure takes
// effect without rebuilding the adapter.
type Adapter struct {
	creds  *creds.Store
	client *resty.Client
	logger *zap.Logger
}

// New creates a WhatsApp Cloud adapter. baseURL is overridable for tests;
// empty means DefaultBaseURL.
func New(store *creds.Store, baseURL string, logger *zap.Logger) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		creds:  store,
		client: resty.New().SetBaseURL(baseURL),
		logger: logger,
	}
}

// Platform returns model.WhatsApp.
func (a *Adapter) Platform() model.Platform { return model.WhatsApp }

// IsConfigured reports whether phone number id and access token are set.
func (a *Adapter) IsConfigured() bool {
	return a.creds.IsConfigured(model.WhatsApp)
}

// Send delivers a text message. The recipient id is normalized to digits
// only before hitting the wire; replyToID becomes the payload's context
// message id.
func (a *Adapter) Send(ctx context.Context, contactID, text, replyToID string) error {
	bundle := a.creds.Get(model.WhatsApp)
	if bundle[creds.FieldPhoneNumberID] == "" || bundle[creds.FieldAccessToken] == "" {
		return platform.ErrUnauthenticated
	}

	to, err := recipient(contactID)
	if err != nil {
		return err
	}

	payload := sendPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: text, PreviewURL: true},
	}
	if replyToID != "" {
		payload.Context = &msgContext{MessageID: replyToID}
	}

	return a.post(ctx, bundle, "/"+bundle[creds.FieldPhoneNumberID]+"/messages", payload)
}

// SendMedia delivers an image, video, audio or document message by link.
func (a *Adapter) SendMedia(ctx context.Context, contactID string, kind model.Kind, url, caption string) error {
	bundle := a.creds.Get(model.WhatsApp)
	if bundle[creds.FieldPhoneNumberID] == "" || bundle[creds.FieldAccessToken] == "" {
		return platform.ErrUnauthenticated
	}

	to, err := recipient(contactID)
	if err != nil {
		return err
	}

	payload := sendPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             string(kind),
	}
	link := &mediaBody{Link: url, Caption: caption}
	switch kind {
	case model.KindImage:
		payload.Image = link
	case model.KindVideo:
		payload.Video = link
	case model.KindAudio:
		payload.Audio = link
	case model.KindDocument:
		payload.Document = link
	default:
		return fmt.Errorf("unsupported media kind %q", kind)
	}

	return a.post(ctx, bundle, "/"+bundle[creds.FieldPhoneNumberID]+"/messages", payload)
}

// SendTemplate delivers a template message, required by the Cloud API to
// initiate a conversation outside the 24h customer window.
func (a *Adapter) SendTemplate(ctx context.Context, contactID, name, languageCode string) error {
	bundle := a.creds.Get(model.WhatsApp)
	if bundle[creds.FieldPhoneNumberID] == "" || bundle[creds.FieldAccessToken] == "" {
		return platform.ErrUnauthenticated
	}
	if languageCode == "" {
		languageCode = "en_US"
	}

	to, err := recipient(contactID)
	if err != nil {
		return err
	}

	payload := sendPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: &templateBody{
			Name:     name,
			Language: templateLanguage{Code: languageCode},
		},
	}

	return a.post(ctx, bundle, "/"+bundle[creds.FieldPhoneNumberID]+"/messages", payload)
}

// FetchContacts lists the business account's open conversations as
// canonical contacts.
func (a *Adapter) FetchContacts(ctx context.Context) ([]model.Contact, error) {
	bundle := a.creds.Get(model.WhatsApp)
	if bundle[creds.FieldAccessToken] == "" {
		return nil, platform.ErrUnauthenticated
	}
	waba := bundle[creds.FieldBusinessAccountID]
	if waba == "" {
		// Sending works without it; conversation listing needs the
		// business account id.
		return nil, fmt.Errorf("%w: business account id not set", platform.ErrUnauthenticated)
	}

	var page graph.ConversationPage
	if err := a.get(ctx, bundle, "/"+waba+"/conversations", map[string]string{
		"fields": "participants,updated_time,unread_count,snippet",
	}, &page); err != nil {
		return nil, err
	}

	contacts := make([]model.Contact, 0, len(page.Data))
	for _, conv := range page.Data {
		contacts = append(contacts, conv.ToContact(model.WhatsApp, waba, bundle[creds.FieldPhoneNumberID]))
	}
	return contacts, nil
}

// FetchMessages returns a conversation's history, oldest first. The
// provider returns newest first, so the page is reversed.
func (a *Adapter) FetchMessages(ctx context.Context, contactID string) ([]model.Message, error) {
	bundle := a.creds.Get(model.WhatsApp)
	if bundle[creds.FieldAccessToken] == "" {
		return nil, platform.ErrUnauthenticated
	}

	var page graph.MessagePage
	if err := a.get(ctx, bundle, "/"+contactID+"/messages", map[string]string{
		"fields": "message,created_time,from,attachments",
	}, &page); err != nil {
		return nil, err
	}

	selfIDs := []string{bundle[creds.FieldPhoneNumberID], bundle[creds.FieldBusinessAccountID]}
	msgs := make([]model.Message, 0, len(page.Data))
	for i := len(page.Data) - 1; i >= 0; i-- {
		msgs = append(msgs, page.Data[i].ToMessage(selfIDs))
	}
	return msgs, nil
}

func (a *Adapter) post(ctx context.Context, bundle creds.Bundle, path string, payload any) error {
	var apiErr graph.APIError
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(bundle[creds.FieldAccessToken]).
		SetBody(payload).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrNetwork, err)
	}
	if resp.IsError() {
		return platform.ClassifyHTTP(resp.StatusCode(), apiErr.Message())
	}
	return nil
}

func (a *Adapter) get(ctx context.Context, bundle creds.Bundle, path string, query map[string]string, out any) error {
	var apiErr graph.APIError
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(bundle[creds.FieldAccessToken]).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrNetwork, err)
	}
	if resp.IsError() {
		return platform.ClassifyHTTP(resp.StatusCode(), apiErr.Message())
	}
	if !strings.Contains(resp.Header().Get("Content-Type"), "json") {
		return fmt.Errorf("%w: content type %q", platform.ErrMalformed, resp.Header().Get("Content-Type"))
	}
	return nil
}

// recipient normalizes a contact id for the wire. An id with no digits
// left after normalization cannot address anyone.
func recipient(contactID string) (string, error) {
	to := digitsOnly(contactID)
	if to == "" {
		return "", fmt.Errorf("%w: %q has no digits", platform.ErrInvalidRecipient, contactID)
	}
	return to, nil
}

// digitsOnly strips +, spaces, dashes and anything else non-numeric.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
