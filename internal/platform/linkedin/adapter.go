// Package linkedin serves a fixed professional-network conversation set.
// There is no public conversations API to integrate against, so the
// adapter answers from fixtures and accepts sends without delivering them.
package linkedin

import (
	"context"
	"time"

	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

// Adapter is the fixture-backed professional-network adapter.
type Adapter struct {
	contacts []model.Contact
	messages map[string][]model.Message
	logger   *zap.Logger
}

// New seeds the fixture data. Timestamps are anchored to the current time
// so previews sort naturally next to live platforms.
func New(logger *zap.Logger) *Adapter {
	now := time.Now().UnixMilli()
	min := int64(60 * 1000)
	hour := 60 * min

	return &Adapter{
		logger: logger,
		contacts: []model.Contact{
			{
				ID:              "li-1",
				Name:            "Rachel Green",
				Avatar:          "https://i.pravatar.cc/150?u=li-1",
				Platform:        model.LinkedIn,
				LastMessage:     "Thanks for connecting.",
				LastMessageTime: now - 24*hour,
				Role:            "Product Manager at TechCorp",
			},
			{
				ID:              "li-2",
				Name:            "Bruce Wayne",
				Avatar:          "https://i.pravatar.cc/150?u=li-2",
				Platform:        model.LinkedIn,
				LastMessage:     "I have a proposal for you.",
				LastMessageTime: now - 30*min,
				UnreadCount:     3,
				Online:          true,
				Role:            "CEO at Wayne Enterprises",
			},
		},
		messages: map[string][]model.Message{
			"li-1": {
				{
					ID:        "li-1-1",
					Text:      "Hello, I saw your profile and wanted to connect.",
					Sender:    model.SenderPeer,
					Timestamp: now - 25*hour,
					Kind:      model.KindText,
				},
				{
					ID:        "li-1-2",
					Text:      "Hi Rachel, nice to meet you!",
					Sender:    model.SenderSelf,
					Timestamp: now - 24*hour - 30*min,
					Status:    model.StatusRead,
					Kind:      model.KindText,
				},
				{
					ID:        "li-1-3",
					Text:      "Resume.pdf",
					Sender:    model.SenderPeer,
					Timestamp: now - 24*hour,
					Kind:      model.KindDocument,
					FileName:  "Resume_2024.pdf",
				},
			},
			"li-2": {
				{
					ID:        "li-2-1",
					Text:      "I have a proposal for you.",
					Sender:    model.SenderPeer,
					Timestamp: now - 30*min,
					Kind:      model.KindText,
				},
			},
		},
	}
}

// Platform returns the platform this adapter serves.
func (a *Adapter) Platform() model.Platform { return model.LinkedIn }

// IsConfigured is always true; the fixture set needs no credentials.
func (a *Adapter) IsConfigured() bool { return true }

// FetchContacts returns a copy of the fixture contacts.
func (a *Adapter) FetchContacts(ctx context.Context) ([]model.Contact, error) {
	out := make([]model.Contact, len(a.contacts))
	copy(out, a.contacts)
	return out, nil
}

// FetchMessages returns a deep copy of the contact's fixture history.
// Unknown contacts yield an empty history, not an error.
func (a *Adapter) FetchMessages(ctx context.Context, contactID string) ([]model.Message, error) {
	src := a.messages[contactID]
	out := make([]model.Message, 0, len(src))
	for _, m := range src {
		out = append(out, m.Clone())
	}
	return out, nil
}

// Send accepts the message without delivering it anywhere.
func (a *Adapter) Send(ctx context.Context, contactID, text, replyToID string) error {
	a.logger.Debug("send accepted without delivery", zap.String("contact", contactID))
	return nil
}
