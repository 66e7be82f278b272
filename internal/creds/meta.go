package creds

import (
	"context"
	"fmt"

	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

// Page is a managed social-graph page discovered during the handshake.
type Page struct {
	ID          string
	AccessToken string
}

// GraphSession is the external login collaborator for the social-graph
// platform. Implementations talk to the real provider; tests stub it.
type GraphSession interface {
	// Login exchanges the app id for a user session token.
	Login(ctx context.Context, appID string) (token string, err error)

	// ListPages returns the pages the logged-in user manages.
	ListPages(ctx context.Context, token string) ([]Page, error)

	// LinkedInstagram resolves the business account linked to a page.
	// Returns empty when the page has no linked account.
	LinkedInstagram(ctx context.Context, pageID, pageToken string) (string, error)
}

// loginAndDiscover runs the social-graph handshake: login, then a two-step
// dependent fetch (page, then linked secondary surface). Step 2 only
// proceeds if step 1 yields a page, and each step persists its own
// progress, so a late failure leaves configured-state and linkage-state
// partially advanced rather than rolled back.
func (s *Store) loginAndDiscover(ctx context.Context, appID string) error {
	token, err := s.graph.Login(ctx, appID)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.putField(metaKey, FieldUserAccessToken, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}

	// One-time discovery: skip if a page is already linked.
	bundle, err := s.getBundle(metaKey)
	if err != nil {
		return err
	}
	if bundle[FieldPageID] != "" {
		return nil
	}

	pages, err := s.graph.ListPages(ctx, token)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		s.logger.Info("no managed pages found, surfaces stay unlinked")
		return nil
	}

	page := pages[0]
	if err := s.putField(metaKey, FieldPageID, page.ID); err != nil {
		return fmt.Errorf("persist page id: %w", err)
	}

	igID, err := s.graph.LinkedInstagram(ctx, page.ID, page.AccessToken)
	if err != nil {
		// Page linkage is kept; only the secondary surface is missing.
		return fmt.Errorf("linked instagram: %w", err)
	}
	if igID != "" {
		if err := s.putField(metaKey, FieldInstagramID, igID); err != nil {
			return fmt.Errorf("persist instagram id: %w", err)
		}
		s.logger.Info("linked instagram account found", zap.String("instagram_id", igID))
	}
	return nil
}

// IsLinked reports whether the resource a social-graph surface fetches
// through has been discovered. Non-meta platforms are trivially linked.
func (s *Store) IsLinked(p model.Platform) bool {
	switch p {
	case model.Messenger:
		return s.Get(p)[FieldPageID] != ""
	case model.Instagram:
		return s.Get(p)[FieldInstagramID] != ""
	default:
		return true
	}
}
