// Package replygen produces contact replies for the delivery simulator,
// either through a hosted text-generation API or from canned lines when
// no API key is configured.
package replygen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/suziewongzie/UniChat/internal/model"
)

// Persona describes who the generated reply should come from.
type Persona struct {
	ContactName string
	Platform    model.Platform
	Role        string
}

// Generator produces one reply continuing the conversation history.
type Generator interface {
	Generate(ctx context.Context, history []model.Message, p Persona) (string, error)
}

// ErrMissingAPIKey means the HTTP generator cannot be constructed.
var ErrMissingAPIKey = errors.New("reply api key missing")

// defaultTones describes each platform's register. The persona instruction
// prepends "You are <name>, " and {role} expands to the contact's role.
var defaultTones = map[model.Platform]string{
	model.LinkedIn:  "a professional {role} on LinkedIn. Keep the tone professional, polite, and business-oriented.",
	model.Instagram: "a friend on Instagram. Keep the tone casual, use emojis, maybe slang if appropriate. Short messages.",
	model.WhatsApp:  "a close contact on WhatsApp. Tone is personal, direct, and friendly.",
	model.Messenger: "a Facebook friend. Casual and conversational tone.",
}

// Tones merges per-platform tone overrides over the defaults. Keys are
// platform names; unknown keys are ignored.
func Tones(overrides map[string]string) map[model.Platform]string {
	tones := make(map[model.Platform]string, len(defaultTones))
	for p, tone := range defaultTones {
		tones[p] = tone
	}
	for name, tone := range overrides {
		p := model.Platform(name)
		if p.Valid() && tone != "" {
			tones[p] = tone
		}
	}
	return tones
}

func instruction(p Persona, tones map[model.Platform]string) string {
	role := p.Role
	if role == "" {
		role = "connection"
	}
	tone := strings.ReplaceAll(tones[p.Platform], "{role}", role)
	return fmt.Sprintf("You are %s, %s", p.ContactName, tone)
}

// buildPrompt renders the persona instruction plus a Me:/Name: transcript
// and asks for the next line from the contact's side.
func buildPrompt(history []model.Message, p Persona, tones map[model.Platform]string) string {
	var b strings.Builder
	b.WriteString(instruction(p, tones))
	b.WriteString("\n\nHere is our chat history:\n")
	for _, m := range history {
		who := p.ContactName
		if m.Sender == model.SenderSelf {
			who = "Me"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, m.Text)
	}
	fmt.Fprintf(&b, "\nGenerate a realistic reply strictly from the perspective of %s. ", p.ContactName)
	fmt.Fprintf(&b, "Do not include \"Me:\" or \"%s:\" in the output. Just the message content.", p.ContactName)
	return b.String()
}
