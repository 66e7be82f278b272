// Package model defines the canonical contact/message entities every
// platform adapter normalizes into.
package model

// Platform identifies a messaging platform.
type Platform string

const (
	WhatsApp  Platform = "whatsapp"
	Instagram Platform = "instagram"
	Messenger Platform = "messenger"
	LinkedIn  Platform = "linkedin"
)

// Platforms lists all known platforms in display order.
var Platforms = []Platform{WhatsApp, Instagram, Messenger, LinkedIn}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case WhatsApp, Instagram, Messenger, LinkedIn:
		return true
	}
	return false
}

// Sender tells which side of a conversation produced a message.
type Sender string

const (
	SenderSelf Sender = "self"
	SenderPeer Sender = "peer"
)

// Status is the delivery status of an outgoing message. The empty status
// means no delivery tracking (inbound messages).
type Status string

const (
	StatusNone      Status = ""
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// statusRank orders statuses so transitions never regress.
var statusRank = map[Status]int{
	StatusNone:      0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Before reports whether s is strictly earlier than other in the
// sent → delivered → read progression.
func (s Status) Before(other Status) bool {
	return statusRank[s] < statusRank[other]
}

// Kind is the content kind of a message.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindLink     Kind = "link"
)

// Contact is a canonical conversation partner on exactly one platform.
type Contact struct {
	ID              string
	Name            string
	Avatar          string
	Platform        Platform
	LastMessage     string
	LastMessageTime int64 // unix ms
	UnreadCount     int
	Online          bool
	Role            string // professional-network contacts mostly
}

// Reaction is one emoji's aggregate on a message. Count is always positive;
// a reaction whose count would drop to zero is removed instead.
type Reaction struct {
	Emoji   string
	Count   int
	Reacted bool // whether the local user contributed to Count
}

// ReplyRef is a denormalized snapshot of a quoted message, frozen at
// reply-creation time. It is never updated when the original changes.
type ReplyRef struct {
	ID     string
	Text   string
	Sender Sender
	Kind   Kind
}

// Message is a canonical message within a single conversation.
type Message struct {
	ID        string
	Text      string
	Sender    Sender
	Timestamp int64 // unix ms
	Status    Status
	Kind      Kind
	MediaURL  string
	FileName  string // document kind
	Reactions []Reaction
	ReplyTo   *ReplyRef
}

// Clone returns a deep copy of the message so callers cannot alias the
// store's reaction slice or reply snapshot.
func (m Message) Clone() Message {
	out := m
	if m.Reactions != nil {
		out.Reactions = make([]Reaction, len(m.Reactions))
		copy(out.Reactions, m.Reactions)
	}
	if m.ReplyTo != nil {
		ref := *m.ReplyTo
		out.ReplyTo = &ref
	}
	return out
}

// ResultType discriminates search results.
type ResultType string

const (
	ResultContact ResultType = "contact"
	ResultMessage ResultType = "message"
)

// MatchName tags a search result matched on contact name rather than
// message content kind.
const MatchName = "name"

// SearchResult is one hit from a cross-conversation search. Ephemeral,
// recomputed per query.
type SearchResult struct {
	Type    ResultType
	Contact Contact
	Message *Message
	Match   string // a Kind value, or MatchName
}
