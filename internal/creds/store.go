// Package creds owns per-platform credential bundles: durable storage,
// the configured predicate, and the social-graph login handshake with its
// linked-resource discovery.
package creds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

// ErrMissingField is returned by Configure when a required field is empty.
var ErrMissingField = errors.New("missing required credential field")

// Bundle is an opaque per-platform credential field set.
type Bundle map[string]string

// Well-known bundle field names.
const (
	FieldPhoneNumberID     = "phone_number_id"
	FieldAccessToken       = "access_token"
	FieldBusinessAccountID = "business_account_id"
	FieldAppID             = "app_id"
	FieldUserAccessToken   = "user_access_token"
	FieldPageID            = "page_id"
	FieldInstagramID       = "instagram_id"
)

// metaKey is the storage key shared by the two social-graph surfaces.
// Messenger and Instagram ride one login session, so they share a bundle.
const metaKey = "meta"

func bundleKey(p model.Platform) string {
	switch p {
	case model.Messenger, model.Instagram:
		return metaKey
	default:
		return string(p)
	}
}

// requiredAtConfigure lists the fields a caller must supply to Configure.
// Fields produced by the login handshake (session token, linked resources)
// are not in this set.
var requiredAtConfigure = map[string][]string{
	string(model.WhatsApp): {FieldPhoneNumberID, FieldAccessToken},
	metaKey:                {FieldAppID},
	string(model.LinkedIn): {},
}

// configuredPredicate lists the fields that must be non-empty for the
// platform to count as configured.
var configuredPredicate = map[string][]string{
	string(model.WhatsApp): {FieldPhoneNumberID, FieldAccessToken},
	metaKey:                {FieldAppID, FieldUserAccessToken},
	string(model.LinkedIn): {},
}

// Store is the durable credential store. It exclusively owns credential
// mutation; adapters borrow read copies via Get.
type Store struct {
	db     *DB
	graph  GraphSession
	logger *zap.Logger
}

// NewStore creates a credential store over an opened, migrated DB. graph
// may be nil when no social-graph handshake collaborator is available;
// Configure for the meta surfaces then stores fields without logging in.
func NewStore(db *DB, graph GraphSession, logger *zap.Logger) *Store {
	return &Store{db: db, graph: graph, logger: logger}
}

// SetGraphSession installs the login collaborator after construction. The
// graph transport reads tokens back out of this store, so the two are
// wired in two steps at startup, before any Configure call.
func (s *Store) SetGraphSession(g GraphSession) {
	s.graph = g
}

// Configure validates and stores a credential bundle for the platform and
// returns the updated configured predicate. A successful configure for a
// social-graph surface additionally runs the login handshake and, once per
// session, the linked-resource discovery (see meta.go).
func (s *Store) Configure(ctx context.Context, p model.Platform, bundle Bundle) (bool, error) {
	key := bundleKey(p)
	for _, field := range requiredAtConfigure[key] {
		if bundle[field] == "" {
			return s.IsConfigured(p), fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	if err := s.putFields(key, bundle); err != nil {
		return false, err
	}

	if key == metaKey && s.graph != nil {
		if err := s.loginAndDiscover(ctx, bundle[FieldAppID]); err != nil {
			// Partial progress is already persisted; the caller sees the
			// configured predicate as it now stands.
			s.logger.Warn("social-graph handshake incomplete", zap.Error(err))
		}
	}

	return s.IsConfigured(p), nil
}

// IsConfigured reports whether the platform's required fields are present.
func (s *Store) IsConfigured(p model.Platform) bool {
	key := bundleKey(p)
	bundle, err := s.getBundle(key)
	if err != nil {
		return false
	}
	for _, field := range configuredPredicate[key] {
		if bundle[field] == "" {
			return false
		}
	}
	return true
}

// Get returns a read-only copy of the platform's bundle. Absent platforms
// yield an empty bundle.
func (s *Store) Get(p model.Platform) Bundle {
	bundle, err := s.getBundle(bundleKey(p))
	if err != nil {
		return Bundle{}
	}
	return bundle
}

func (s *Store) putFields(key string, fields Bundle) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for field, value := range fields {
		if _, err := tx.Exec(`
			INSERT INTO credentials (platform, field, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(platform, field) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at`,
			key, field, value, now); err != nil {
			return fmt.Errorf("upsert field %q: %w", field, err)
		}
	}
	return tx.Commit()
}

func (s *Store) putField(key, field, value string) error {
	return s.putFields(key, Bundle{field: value})
}

func (s *Store) getBundle(key string) (Bundle, error) {
	rows, err := s.db.Query(`SELECT field, value FROM credentials WHERE platform = ?`, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	bundle := Bundle{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		bundle[field] = value
	}
	return bundle, rows.Err()
}
