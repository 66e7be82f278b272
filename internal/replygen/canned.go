package replygen

import (
	"context"

	"github.com/suziewongzie/UniChat/internal/model"
)

// cannedReplies keeps the offline pipeline alive when no API key is
// configured. Cycled by history length so a conversation does not repeat
// itself immediately.
var cannedReplies = map[model.Platform][]string{
	model.WhatsApp: {
		"Sounds good, talk soon!",
		"Haha, exactly.",
		"Let me check and get back to you.",
	},
	model.Instagram: {
		"Omg yes 🔥",
		"Haha love that 😂",
		"So good!! 🙌",
	},
	model.Messenger: {
		"Yeah for sure!",
		"Nice, count me in.",
		"Good one, haha.",
	},
	model.LinkedIn: {
		"Thank you for reaching out. I will review and follow up shortly.",
		"That sounds like a great opportunity, let's schedule a call.",
		"Appreciate the update. I'll circulate it with my team.",
	},
}

// Canned is the offline fallback generator.
type Canned struct{}

// Generate picks a platform-appropriate line. Never fails.
func (Canned) Generate(ctx context.Context, history []model.Message, p Persona) (string, error) {
	lines := cannedReplies[p.Platform]
	if len(lines) == 0 {
		return "Thinking...", nil
	}
	return lines[len(history)%len(lines)], nil
}
