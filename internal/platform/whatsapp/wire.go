package whatsapp

// sendPayload is the Cloud API /messages request body. Exactly one of the
// type-specific fields is set, matching the Type discriminator.
type sendPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`

	Text     *textBody     `json:"text,omitempty"`
	Image    *mediaBody    `json:"image,omitempty"`
	Video    *mediaBody    `json:"video,omitempty"`
	Audio    *mediaBody    `json:"audio,omitempty"`
	Document *mediaBody    `json:"document,omitempty"`
	Template *templateBody `json:"template,omitempty"`

	// Context marks the message as a reply to an earlier provider message.
	Context *msgContext `json:"context,omitempty"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type mediaBody struct {
	Link     string `json:"link"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type templateBody struct {
	Name     string           `json:"name"`
	Language templateLanguage `json:"language"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type msgContext struct {
	MessageID string `json:"message_id"`
}
