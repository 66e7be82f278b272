package replygen

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/suziewongzie/UniChat/internal/config"
	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

// HTTP generates replies through a hosted generateContent endpoint.
type HTTP struct {
	http   *resty.Client
	model  string
	apiKey string
	tones  map[model.Platform]string
	logger *zap.Logger
}

// NewHTTP creates the hosted generator. An empty API key is a
// construction error; callers fall back to Canned.
func NewHTTP(cfg config.ReplyAPI, tones map[model.Platform]string, logger *zap.Logger) (*HTTP, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &HTTP{
		http:   resty.New().SetBaseURL(cfg.BaseURL),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		tones:  tones,
		logger: logger,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate posts the persona prompt and decodes the first candidate.
func (g *HTTP) Generate(ctx context.Context, history []model.Message, p Persona) (string, error) {
	prompt := buildPrompt(history, p, g.tones)

	var out generateResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}).
		SetResult(&out).
		Post("/models/" + g.model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("generate reply: status %d", resp.StatusCode())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate reply: no candidates")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("generate reply: empty candidate")
	}
	g.logger.Debug("reply generated",
		zap.String("contact", p.ContactName),
		zap.Int("history", len(history)))
	return text, nil
}
