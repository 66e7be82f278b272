// Package meta implements the social-graph adapter family: one shared
// Graph session serving the Messenger and Instagram surfaces.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"github.com/suziewongzie/UniChat/internal/platform/graph"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production Graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v18.0"

// maxPages bounds pagination when following a listing's next cursors.
const maxPages = 3

// Client is the shared Graph transport both surfaces ride. Credentials are
// borrowed read-only from the credential store per call.
type Client struct {
	creds  *creds.Store
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a shared Graph client. baseURL is overridable for
// tests; empty means DefaultBaseURL.
func NewClient(store *creds.Store, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		creds:  store,
		http:   resty.New().SetBaseURL(baseURL),
		logger: logger,
	}
}

func (c *Client) get(ctx context.Context, token, path string, query map[string]string, out any) error {
	var apiErr graph.APIError
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr)
	if token != "" {
		req.SetQueryParam("access_token", token)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrNetwork, err)
	}
	if resp.IsError() {
		return platform.ClassifyHTTP(resp.StatusCode(), apiErr.Message())
	}
	if !strings.Contains(resp.Header().Get("Content-Type"), "json") {
		return fmt.Errorf("%w: content type %q", platform.ErrMalformed, resp.Header().Get("Content-Type"))
	}
	return nil
}

func (c *Client) post(ctx context.Context, token, path string, payload any) error {
	var apiErr graph.APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", token).
		SetBody(payload).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrNetwork, err)
	}
	if resp.StatusCode() == 400 {
		return fmt.Errorf("%w: %s", platform.ErrInvalidRecipient, apiErr.Message())
	}
	if resp.IsError() {
		return platform.ClassifyHTTP(resp.StatusCode(), apiErr.Message())
	}
	return nil
}

// listConversations fetches a resource's conversation listing, following
// next cursors up to maxPages.
func (c *Client) listConversations(ctx context.Context, token, resourceID string, query map[string]string) ([]graph.Conversation, error) {
	var all []graph.Conversation
	after := ""
	for i := 0; i < maxPages; i++ {
		q := make(map[string]string, len(query)+1)
		for k, v := range query {
			q[k] = v
		}
		if after != "" {
			q["after"] = after
		}

		var page graph.ConversationPage
		if err := c.get(ctx, token, "/"+resourceID+"/conversations", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)

		after = page.Paging.NextCursor()
		if after == "" {
			break
		}
	}
	return all, nil
}

// session token and self identities, shared by both surfaces.

func (c *Client) token() string {
	return c.creds.Get(model.Messenger)[creds.FieldUserAccessToken]
}

func (c *Client) selfIDs() []string {
	bundle := c.creds.Get(model.Messenger)
	return []string{bundle[creds.FieldPageID], bundle[creds.FieldInstagramID]}
}

func (c *Client) resourceID(surface model.Platform) string {
	bundle := c.creds.Get(surface)
	if surface == model.Instagram {
		return bundle[creds.FieldInstagramID]
	}
	return bundle[creds.FieldPageID]
}
