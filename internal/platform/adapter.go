// Package platform defines the capability set every messaging-platform
// adapter implements, plus the transport error taxonomy adapters translate
// provider failures into.
package platform

import (
	"context"
	"errors"

	"github.com/suziewongzie/UniChat/internal/model"
)

// Transport error taxonomy. Adapters wrap provider failures into exactly
// one of these; callers classify with errors.Is. The core never retries.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrRateLimited      = errors.New("rate limited")
	ErrNetwork          = errors.New("network error")
	ErrMalformed        = errors.New("malformed response")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Adapter is a per-platform translation and transport unit. Adapters are
// pure translation plus transport: they never know about each other or
// about the conversation store, and they return normalized snapshots the
// store copies in.
type Adapter interface {
	// Platform returns the platform this adapter serves.
	Platform() model.Platform

	// IsConfigured reports whether the adapter has the credentials it
	// needs to reach the provider.
	IsConfigured() bool

	// FetchContacts returns the platform's conversation partners.
	FetchContacts(ctx context.Context) ([]model.Contact, error)

	// FetchMessages returns a conversation's history, oldest first.
	FetchMessages(ctx context.Context, contactID string) ([]model.Message, error)

	// Send delivers a text message. replyToID, when non-empty, references
	// the provider message being replied to.
	Send(ctx context.Context, contactID, text, replyToID string) error
}
