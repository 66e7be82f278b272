// Package convo keeps the in-memory conversation state: the merged
// contact list and per-contact message history, fed by the platform
// adapters and edited optimistically by the caller.
package convo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suziewongzie/UniChat/internal/bus"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"go.uber.org/zap"
)

var (
	// ErrContactNotFound means the contact id is not in the store.
	ErrContactNotFound = errors.New("contact not found")

	// ErrMessageNotFound means the message id is not in the conversation.
	ErrMessageNotFound = errors.New("message not found")
)

// sendTimeout bounds the background durable send.
const sendTimeout = 30 * time.Second

// Gate reports whether a platform link is up. Fetches and sends are only
// attempted through connected platforms.
type Gate interface {
	IsConnected(p model.Platform) bool
	Require(p model.Platform) error
}

// conversation is one contact's state. Each carries its own lock so
// cross-contact operations proceed concurrently. The contact struct and
// the message slice are only touched under this lock; the store lock
// guards the map and ordering only.
type conversation struct {
	mu       sync.Mutex
	contact  model.Contact
	messages []model.Message
	loadSeq  uint64
}

func (c *conversation) platform() model.Platform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contact.Platform
}

// Store is the in-memory conversation store. The store lock guards the
// contact map and ordering; message edits take the conversation lock.
type Store struct {
	mu       sync.Mutex
	convs    map[string]*conversation
	order    []string
	active   string
	fetchSeq map[model.Platform]uint64

	adapters       map[model.Platform]platform.Adapter
	gate           Gate
	bus            *bus.Bus
	deliveredDelay time.Duration
	logger         *zap.Logger

	hookMu   sync.Mutex
	sendHook func(contact model.Contact)
}

// NewStore creates an empty store over the given adapters. deliveredDelay
// is how long an optimistic send stays "sent" before it reads as
// delivered.
func NewStore(adapters []platform.Adapter, gate Gate, b *bus.Bus, deliveredDelay time.Duration, logger *zap.Logger) *Store {
	byPlatform := make(map[model.Platform]platform.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Store{
		convs:          make(map[string]*conversation),
		fetchSeq:       make(map[model.Platform]uint64),
		adapters:       byPlatform,
		gate:           gate,
		bus:            b,
		deliveredDelay: deliveredDelay,
		logger:         logger,
	}
}

// SetSendHook registers the callback invoked after every optimistic send.
// The delivery simulator uses it to schedule a reply.
func (s *Store) SetSendHook(hook func(contact model.Contact)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.sendHook = hook
}

// LoadContacts refreshes the platform's contact subset from its adapter.
// A disconnected platform yields an empty list without error. A fetch
// failure keeps the cache intact: the cached subset is returned alongside
// the error. A completion raced past by a newer request is discarded.
func (s *Store) LoadContacts(ctx context.Context, p model.Platform) ([]model.Contact, error) {
	if !s.gate.IsConnected(p) {
		return []model.Contact{}, nil
	}
	adapter := s.adapters[p]
	if adapter == nil {
		return nil, fmt.Errorf("no adapter for platform %q", p)
	}

	s.mu.Lock()
	s.fetchSeq[p]++
	seq := s.fetchSeq[p]
	s.mu.Unlock()

	fetched, err := adapter.FetchContacts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.platformContactsLocked(p), fmt.Errorf("fetch contacts for %s: %w", p, err)
	}
	if seq != s.fetchSeq[p] {
		// A newer refresh was dispatched while this one was in flight.
		return s.platformContactsLocked(p), nil
	}

	s.replaceSubsetLocked(p, fetched)
	return s.platformContactsLocked(p), nil
}

// replaceSubsetLocked swaps the platform's contacts for the fetched list,
// keeping message history and preserving local unread/online state when
// the provider reports zero values.
func (s *Store) replaceSubsetLocked(p model.Platform, fetched []model.Contact) {
	seen := make(map[string]bool, len(fetched))
	for _, fc := range fetched {
		seen[fc.ID] = true
		c, ok := s.convs[fc.ID]
		if !ok {
			s.convs[fc.ID] = &conversation{contact: fc}
			s.order = append(s.order, fc.ID)
			continue
		}
		c.mu.Lock()
		prev := c.contact
		if fc.UnreadCount == 0 {
			fc.UnreadCount = prev.UnreadCount
		}
		if !fc.Online {
			fc.Online = prev.Online
		}
		if fc.LastMessageTime < prev.LastMessageTime {
			fc.LastMessageTime = prev.LastMessageTime
		}
		c.contact = fc
		c.mu.Unlock()
	}

	kept := s.order[:0]
	for _, id := range s.order {
		c := s.convs[id]
		if c != nil && c.platform() == p && !seen[id] {
			delete(s.convs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func (s *Store) platformContactsLocked(p model.Platform) []model.Contact {
	out := []model.Contact{}
	for _, id := range s.order {
		c := s.convs[id]
		if c == nil {
			continue
		}
		c.mu.Lock()
		contact := c.contact
		c.mu.Unlock()
		if contact.Platform == p {
			out = append(out, contact)
		}
	}
	return out
}

// LoadMessages refreshes a conversation's history from its adapter. A
// disconnected platform or a fetch failure yields the cached history; a
// completion raced past by a newer request is discarded so the cache
// never moves backwards.
func (s *Store) LoadMessages(ctx context.Context, contactID string) ([]model.Message, error) {
	c := s.lookup(contactID)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	p := c.platform()
	adapter := s.adapters[p]
	if adapter == nil || !s.gate.IsConnected(p) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return cloneMessages(c.messages), nil
	}

	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	fetched, err := adapter.FetchMessages(ctx, contactID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return cloneMessages(c.messages), fmt.Errorf("fetch messages for %s: %w", contactID, err)
	}
	if seq != c.loadSeq {
		return cloneMessages(c.messages), nil
	}

	c.messages = fetched
	return cloneMessages(c.messages), nil
}

// Send appends an optimistic outgoing text message and returns it. The
// durable platform send, the delivered transition, and the reply
// scheduling all happen asynchronously; a durable-send failure is logged
// and never retracts the appended message.
func (s *Store) Send(ctx context.Context, contactID, text, replyToID string) (model.Message, error) {
	c := s.lookup(contactID)
	if c == nil {
		return model.Message{}, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	now := time.Now().UnixMilli()
	msg := model.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    model.SenderSelf,
		Timestamp: now,
		Status:    model.StatusSent,
		Kind:      model.KindText,
	}

	c.mu.Lock()
	if replyToID != "" {
		target := findMessage(c.messages, replyToID)
		if target == nil {
			c.mu.Unlock()
			return model.Message{}, fmt.Errorf("%w: reply target %s", ErrMessageNotFound, replyToID)
		}
		msg.ReplyTo = &model.ReplyRef{
			ID:     target.ID,
			Text:   snapshotText(*target),
			Sender: target.Sender,
			Kind:   target.Kind,
		}
	}
	c.messages = append(c.messages, msg)
	c.contact.LastMessage = text
	if now > c.contact.LastMessageTime {
		c.contact.LastMessageTime = now
	}
	contact := c.contact
	c.mu.Unlock()

	go s.dispatchSend(contact.Platform, contactID, text, replyToID)
	time.AfterFunc(s.deliveredDelay, func() {
		s.markDelivered(contactID, msg.ID)
	})

	s.hookMu.Lock()
	hook := s.sendHook
	s.hookMu.Unlock()
	if hook != nil {
		hook(contact)
	}

	return msg.Clone(), nil
}

// dispatchSend pushes the message to the platform in the background. The
// optimistic append already happened; failure only leaves a log line. A
// platform that went down before the durable send never reaches its
// adapter.
func (s *Store) dispatchSend(p model.Platform, contactID, text, replyToID string) {
	adapter := s.adapters[p]
	if adapter == nil {
		return
	}
	if err := s.gate.Require(p); err != nil {
		s.logger.Warn("durable send skipped, keeping optimistic message",
			zap.String("platform", string(p)),
			zap.String("contact", contactID),
			zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := adapter.Send(ctx, contactID, text, replyToID); err != nil {
		s.logger.Warn("durable send failed, keeping optimistic message",
			zap.String("platform", string(p)),
			zap.String("contact", contactID),
			zap.Error(err))
	}
}

// markDelivered advances the message to delivered. The contact or message
// may be gone by the time the timer fires, and the status may already
// have moved past delivered; both cases are no-ops.
func (s *Store) markDelivered(contactID, messageID string) {
	c := s.lookup(contactID)
	if c == nil {
		return
	}
	c.mu.Lock()
	msg := findMessage(c.messages, messageID)
	if msg == nil || !msg.Status.Before(model.StatusDelivered) {
		c.mu.Unlock()
		return
	}
	msg.Status = model.StatusDelivered
	updated := msg.Clone()
	c.mu.Unlock()

	s.publish(bus.KindMessageUpdated, bus.MessageUpdated{
		ContactID: contactID,
		Message:   updated,
	})
}

// React toggles the caller's reaction on a message and returns the
// updated history. A second toggle of the same emoji removes the
// caller's vote; a vote that drops the count to zero removes the entry.
func (s *Store) React(contactID, messageID, emoji string) ([]model.Message, error) {
	c := s.lookup(contactID)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	c.mu.Lock()
	msg := findMessage(c.messages, messageID)
	if msg == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	idx := -1
	for i := range msg.Reactions {
		if msg.Reactions[i].Emoji == emoji {
			idx = i
			break
		}
	}
	switch {
	case idx == -1:
		msg.Reactions = append(msg.Reactions, model.Reaction{Emoji: emoji, Count: 1, Reacted: true})
	case msg.Reactions[idx].Reacted:
		msg.Reactions[idx].Count--
		msg.Reactions[idx].Reacted = false
		if msg.Reactions[idx].Count <= 0 {
			msg.Reactions = append(msg.Reactions[:idx], msg.Reactions[idx+1:]...)
		}
	default:
		msg.Reactions[idx].Count++
		msg.Reactions[idx].Reacted = true
	}
	out := cloneMessages(c.messages)
	c.mu.Unlock()

	s.publish(bus.KindReactionsUpdated, bus.ReactionsUpdated{
		ContactID: contactID,
		Messages:  out,
	})
	return cloneMessages(out), nil
}

// MarkRead clears the contact's unread counter.
func (s *Store) MarkRead(contactID string) error {
	c := s.lookup(contactID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}
	c.mu.Lock()
	c.contact.UnreadCount = 0
	c.mu.Unlock()
	return nil
}

// SetActive marks the conversation the caller is looking at. Inbound
// messages for the active conversation do not bump unread, and activation
// itself marks the history read.
func (s *Store) SetActive(contactID string) error {
	c := s.lookup(contactID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}
	s.mu.Lock()
	s.active = contactID
	s.mu.Unlock()
	return s.MarkRead(contactID)
}

// ClearActive drops the active conversation marker.
func (s *Store) ClearActive() {
	s.mu.Lock()
	s.active = ""
	s.mu.Unlock()
}

// AppendInbound adds a peer message, bumps the preview, and raises unread
// unless the conversation is active. The delivery simulator feeds this.
func (s *Store) AppendInbound(contactID string, msg model.Message) error {
	c := s.lookup(contactID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	s.mu.Lock()
	isActive := s.active == contactID
	s.mu.Unlock()

	stored := msg.Clone()
	c.mu.Lock()
	c.messages = append(c.messages, stored)
	c.contact.LastMessage = snapshotText(stored)
	if stored.Timestamp > c.contact.LastMessageTime {
		c.contact.LastMessageTime = stored.Timestamp
	}
	if !isActive {
		c.contact.UnreadCount++
	}
	c.mu.Unlock()

	s.publish(bus.KindMessageReceived, bus.MessageReceived{
		ContactID: contactID,
		Message:   msg.Clone(),
	})
	return nil
}

// Contact returns a copy of one contact.
func (s *Store) Contact(contactID string) (model.Contact, error) {
	c := s.lookup(contactID)
	if c == nil {
		return model.Contact{}, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contact, nil
}

// Contacts returns a copy of every cached contact in list order.
func (s *Store) Contacts() []model.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Contact, 0, len(s.order))
	for _, id := range s.order {
		c := s.convs[id]
		if c == nil {
			continue
		}
		c.mu.Lock()
		out = append(out, c.contact)
		c.mu.Unlock()
	}
	return out
}

// Messages returns a copy of a conversation's cached history without
// touching the adapter. Unknown contacts yield nil.
func (s *Store) Messages(contactID string) []model.Message {
	c := s.lookup(contactID)
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneMessages(c.messages)
}

func (s *Store) lookup(contactID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs[contactID]
}

func (s *Store) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

func findMessage(msgs []model.Message, id string) *model.Message {
	for i := range msgs {
		if msgs[i].ID == id {
			return &msgs[i]
		}
	}
	return nil
}

func cloneMessages(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Clone())
	}
	return out
}

// snapshotText is the display text for a message without one: media kinds
// read as their label, images as "Photo".
func snapshotText(m model.Message) string {
	if m.Text != "" {
		return m.Text
	}
	if m.Kind == model.KindImage {
		return "Photo"
	}
	return string(m.Kind)
}
