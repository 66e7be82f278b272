package meta

import (
	"context"
	"fmt"

	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/platform"
)

// The Client doubles as the credential store's login collaborator: the
// handshake and resource discovery ride the same Graph transport as the
// surface adapters.
var _ creds.GraphSession = (*Client)(nil)

// Login exchanges the app id for a session token.
func (c *Client) Login(ctx context.Context, appID string) (string, error) {
	var out loginResponse
	if err := c.get(ctx, "", "/oauth/access_token", map[string]string{
		"client_id":  appID,
		"grant_type": "client_credentials",
	}, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", platform.ErrMalformed)
	}
	return out.AccessToken, nil
}

// ListPages returns the pages the logged-in user manages.
func (c *Client) ListPages(ctx context.Context, token string) ([]creds.Page, error) {
	var out accountsResponse
	if err := c.get(ctx, token, "/me/accounts", nil, &out); err != nil {
		return nil, err
	}
	pages := make([]creds.Page, 0, len(out.Data))
	for _, entry := range out.Data {
		pages = append(pages, creds.Page{ID: entry.ID, AccessToken: entry.AccessToken})
	}
	return pages, nil
}

// LinkedInstagram resolves the business account linked to a page, or empty
// when none is linked.
func (c *Client) LinkedInstagram(ctx context.Context, pageID, pageToken string) (string, error) {
	var out linkedIGResponse
	if err := c.get(ctx, pageToken, "/"+pageID, map[string]string{
		"fields": "instagram_business_account",
	}, &out); err != nil {
		return "", err
	}
	if out.InstagramBusinessAccount == nil {
		return "", nil
	}
	return out.InstagramBusinessAccount.ID, nil
}
