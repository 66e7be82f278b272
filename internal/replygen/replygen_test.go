package replygen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/suziewongzie/UniChat/internal/config"
	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

func history() []model.Message {
	return []model.Message{
		{Text: "Hey, are we still meeting?", Sender: model.SenderPeer, Kind: model.KindText},
		{Text: "Yes, absolutely!", Sender: model.SenderSelf, Kind: model.KindText},
	}
}

func TestBuildPromptPersonaAndTranscript(t *testing.T) {
	prompt := buildPrompt(history(), Persona{
		ContactName: "Rachel Green",
		Platform:    model.LinkedIn,
		Role:        "Product Manager at TechCorp",
	}, Tones(nil))

	if !strings.Contains(prompt, "You are Rachel Green, a professional Product Manager at TechCorp on LinkedIn") {
		t.Errorf("persona instruction missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Rachel Green: Hey, are we still meeting?") {
		t.Error("peer transcript line missing")
	}
	if !strings.Contains(prompt, "Me: Yes, absolutely!") {
		t.Error("self transcript line missing")
	}
}

func TestBuildPromptRoleDefaultsToConnection(t *testing.T) {
	prompt := buildPrompt(nil, Persona{ContactName: "Sam", Platform: model.LinkedIn}, Tones(nil))
	if !strings.Contains(prompt, "a professional connection on LinkedIn") {
		t.Errorf("default role missing:\n%s", prompt)
	}
}

func TestTonesOverride(t *testing.T) {
	tones := Tones(map[string]string{
		"whatsapp": "an old classmate. Nostalgic and warm.",
		"telegram": "ignored, unknown platform",
	})
	if tones[model.WhatsApp] != "an old classmate. Nostalgic and warm." {
		t.Errorf("override not applied: %q", tones[model.WhatsApp])
	}
	if tones[model.Instagram] != defaultTones[model.Instagram] {
		t.Error("unrelated platform tone changed")
	}
	if len(tones) != len(defaultTones) {
		t.Error("unknown platform key leaked into tone table")
	}
}

func TestNewHTTPRequiresAPIKey(t *testing.T) {
	_, err := NewHTTP(config.ReplyAPI{BaseURL: "http://x", Model: "m"}, Tones(nil), zap.NewNop())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestHTTPGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"On my way!"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewHTTP(config.ReplyAPI{BaseURL: srv.URL, APIKey: "k-1", Model: "gemini-2.5-flash"}, Tones(nil), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	reply, err := g.Generate(context.Background(), history(), Persona{ContactName: "Jane", Platform: model.WhatsApp})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "On my way!" {
		t.Errorf("reply = %q, want On my way!", reply)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "k-1" {
		t.Errorf("key = %q, want k-1", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("request = %+v, want one prompt part", gotReq)
	}
	if !strings.Contains(gotReq.Contents[0].Parts[0].Text, "You are Jane") {
		t.Error("prompt missing persona instruction")
	}
}

func TestHTTPGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g, err := NewHTTP(config.ReplyAPI{BaseURL: srv.URL, APIKey: "k-1", Model: "m"}, Tones(nil), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), nil, Persona{ContactName: "Jane", Platform: model.WhatsApp}); err == nil {
		t.Fatal("Generate() with no candidates should fail")
	}
}

func TestHTTPGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g, err := NewHTTP(config.ReplyAPI{BaseURL: srv.URL, APIKey: "k-1", Model: "m"}, Tones(nil), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), nil, Persona{ContactName: "Jane", Platform: model.WhatsApp}); err == nil {
		t.Fatal("Generate() on 500 should fail")
	}
}

func TestCannedNeverFails(t *testing.T) {
	g := Canned{}
	for _, p := range model.Platforms {
		reply, err := g.Generate(context.Background(), history(), Persona{ContactName: "X", Platform: p})
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", p, err)
		}
		if reply == "" {
			t.Errorf("Generate(%s) returned empty reply", p)
		}
	}
}

func TestCannedVariesWithHistory(t *testing.T) {
	g := Canned{}
	a, _ := g.Generate(context.Background(), make([]model.Message, 0), Persona{Platform: model.WhatsApp})
	b, _ := g.Generate(context.Background(), make([]model.Message, 1), Persona{Platform: model.WhatsApp})
	if a == b {
		t.Error("consecutive history lengths produced the same canned line")
	}
}
