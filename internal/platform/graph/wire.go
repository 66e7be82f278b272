// Package graph holds the Graph-style wire shapes and the normalization
// from provider payloads into the canonical model. Both the cloud-messaging
// and social-graph adapters decode this format.
package graph

import (
	"net/url"
	"time"

	"github.com/suziewongzie/UniChat/internal/model"
)

// ConversationPage is one page of a conversation listing.
type ConversationPage struct {
	Data   []Conversation `json:"data"`
	Paging Paging         `json:"paging"`
}

// Conversation is a provider conversation summary.
type Conversation struct {
	ID           string `json:"id"`
	UpdatedTime  string `json:"updated_time"`
	Snippet      string `json:"snippet"`
	LastMessage  string `json:"last_message"`
	UnreadCount  int    `json:"unread_count"`
	Participants struct {
		Data []Participant `json:"data"`
	} `json:"participants"`
}

// Participant identifies one side of a conversation.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessagePage is one page of a message listing, newest first.
type MessagePage struct {
	Data   []Message `json:"data"`
	Paging Paging    `json:"paging"`
}

// Message is a provider message.
type Message struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	CreatedTime string      `json:"created_time"`
	From        Participant `json:"from"`
	Attachments struct {
		Data []Attachment `json:"data"`
	} `json:"attachments"`
}

// Attachment is a provider attachment in one of three shapes.
type Attachment struct {
	ImageData *struct {
		URL string `json:"url"`
	} `json:"image_data"`
	VideoData *struct {
		URL string `json:"url"`
	} `json:"video_data"`
	FileURL  string `json:"file_url"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// Paging carries cursors for list endpoints.
type Paging struct {
	Next string `json:"next"`
}

// APIError is the provider's error envelope.
type APIError struct {
	Err struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Message returns the provider error message, or empty.
func (e *APIError) Message() string {
	if e == nil {
		return ""
	}
	return e.Err.Message
}

// ToContact normalizes a conversation summary. selfIDs are the caller's
// own provider identities; the first participant that is not self names
// the contact.
func (c Conversation) ToContact(p model.Platform, selfIDs ...string) model.Contact {
	participant := Participant{ID: "0", Name: "Unknown"}
	for _, cand := range c.Participants.Data {
		if !idIn(cand.ID, selfIDs) {
			participant = cand
			break
		}
	}

	preview := c.Snippet
	if preview == "" {
		preview = c.LastMessage
	}
	if preview == "" {
		preview = "Attachment"
	}

	return model.Contact{
		ID:              c.ID,
		Name:            participant.Name,
		Avatar:          "https://ui-avatars.com/api/?name=" + url.QueryEscape(participant.Name) + "&background=random",
		Platform:        p,
		LastMessage:     preview,
		LastMessageTime: ParseTime(c.UpdatedTime),
		UnreadCount:     c.UnreadCount,
	}
}

// ToMessage normalizes a provider message. Sender is inferred by comparing
// the origin id against the caller's own provider identities. Self
// messages are marked read: the Graph API exposes no per-message receipts,
// so anything mirrored back was long since seen.
func (m Message) ToMessage(selfIDs []string) model.Message {
	kind, mediaURL, fileName := m.detectAttachment()

	out := model.Message{
		ID:        m.ID,
		Text:      m.Message,
		Sender:    model.SenderPeer,
		Timestamp: ParseTime(m.CreatedTime),
		Kind:      kind,
		MediaURL:  mediaURL,
		FileName:  fileName,
	}
	if idIn(m.From.ID, selfIDs) {
		out.Sender = model.SenderSelf
		out.Status = model.StatusRead
	}
	return out
}

// detectAttachment maps the first attachment to a content kind. Detection
// order is image, then video, then generic file; first match wins.
func (m Message) detectAttachment() (model.Kind, string, string) {
	if len(m.Attachments.Data) == 0 {
		return model.KindText, "", ""
	}
	att := m.Attachments.Data[0]
	switch {
	case att.ImageData != nil:
		return model.KindImage, att.ImageData.URL, ""
	case att.VideoData != nil:
		return model.KindVideo, att.VideoData.URL, ""
	case att.FileURL != "":
		return model.KindDocument, att.FileURL, att.Name
	default:
		return model.KindText, "", ""
	}
}

// graphTimeLayout is the +0000-style offset variant Graph emits alongside
// plain RFC 3339.
const graphTimeLayout = "2006-01-02T15:04:05-0700"

// ParseTime parses a Graph timestamp into unix ms. Unparseable input
// yields zero.
func ParseTime(s string) int64 {
	for _, layout := range []string{graphTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// NextCursor extracts the "after" cursor from a paging URL, or empty.
func (p Paging) NextCursor() string {
	if p.Next == "" {
		return ""
	}
	u, err := url.Parse(p.Next)
	if err != nil {
		return ""
	}
	return u.Query().Get("after")
}

func idIn(id string, ids []string) bool {
	if id == "" {
		return false
	}
	for _, cand := range ids {
		if cand != "" && cand == id {
			return true
		}
	}
	return false
}
