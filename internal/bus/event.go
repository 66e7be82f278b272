package bus

import (
	"time"

	"github.com/suziewongzie/UniChat/internal/model"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds making up the change-notification contract exposed to
// external observers (e.g. a view layer).
const (
	KindMessageReceived   = "message.received"
	KindMessageUpdated    = "message.updated"
	KindReactionsUpdated  = "message.reactions"
	KindConnectionChanged = "connection.changed"
)

// MessageReceived is the payload for a new inbound message.
type MessageReceived struct {
	ContactID string
	Message   model.Message
}

// MessageUpdated is the payload for a delivery-status change on an
// existing message.
type MessageUpdated struct {
	ContactID string
	Message   model.Message
}

// ReactionsUpdated carries the full message sequence of a conversation
// after a reaction toggle.
type ReactionsUpdated struct {
	ContactID string
	Messages  []model.Message
}

// ConnectionChanged is the payload for a platform connection transition.
type ConnectionChanged struct {
	Platform  model.Platform
	Connected bool
}
