// Package simulator schedules delayed peer replies to outgoing messages,
// standing in for real inbound webhook traffic.
package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/replygen"
	"go.uber.org/zap"
)

// Store is the conversation surface the simulator reads and appends to.
type Store interface {
	Contact(contactID string) (model.Contact, error)
	Messages(contactID string) []model.Message
	AppendInbound(contactID string, msg model.Message) error
}

// Simulator delivers one generated reply per scheduled contact after a
// randomized delay.
type Simulator struct {
	store    Store
	gen      replygen.Generator
	minDelay time.Duration
	maxDelay time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// New creates a simulator. Replies fire after a uniform delay in
// [minDelay, maxDelay].
func New(store Store, gen replygen.Generator, minDelay, maxDelay time.Duration, logger *zap.Logger) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		store:    store,
		gen:      gen,
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]*time.Timer),
	}
}

// Schedule queues a reply from the contact. At most one task per contact
// is pending at a time; a schedule while one is queued coalesces into it.
func (s *Simulator) Schedule(contact model.Contact) {
	persona := replygen.Persona{
		ContactName: contact.Name,
		Platform:    contact.Platform,
		Role:        contact.Role,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, queued := s.pending[contact.ID]; queued {
		return
	}

	id := contact.ID
	s.pending[id] = time.AfterFunc(s.delay(), func() {
		s.fire(id, persona)
	})
}

// Stop cancels every pending task. In-flight generation sees a canceled
// context.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancel()
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

func (s *Simulator) delay() time.Duration {
	spread := s.maxDelay - s.minDelay
	if spread <= 0 {
		return s.minDelay
	}
	return s.minDelay + time.Duration(rand.Int63n(int64(spread)+1))
}

// fire generates and appends the reply. The history snapshot is taken at
// fire time so coalesced sends are all visible to the generator. The
// contact may have vanished since scheduling; that aborts quietly, as
// does a generation failure.
func (s *Simulator) fire(contactID string, persona replygen.Persona) {
	s.mu.Lock()
	delete(s.pending, contactID)
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if _, err := s.store.Contact(contactID); err != nil {
		s.logger.Debug("reply target gone, dropping task", zap.String("contact", contactID))
		return
	}

	history := s.store.Messages(contactID)
	reply, err := s.gen.Generate(s.ctx, history, persona)
	if err != nil {
		s.logger.Warn("reply generation failed",
			zap.String("contact", contactID),
			zap.Error(err))
		return
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		Text:      reply,
		Sender:    model.SenderPeer,
		Timestamp: time.Now().UnixMilli(),
		Kind:      model.KindText,
	}
	if err := s.store.AppendInbound(contactID, msg); err != nil {
		s.logger.Warn("reply append failed",
			zap.String("contact", contactID),
			zap.Error(err))
	}
}
