package meta

// sendPayload is the page Send API request body.
type sendPayload struct {
	Recipient recipient   `json:"recipient"`
	Message   messageBody `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type messageBody struct {
	Text    string   `json:"text"`
	ReplyTo *replyTo `json:"reply_to,omitempty"`
}

type replyTo struct {
	MID string `json:"mid"`
}

// loginResponse is the oauth access_token exchange response.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// accountsResponse is the /me/accounts listing.
type accountsResponse struct {
	Data []accountEntry `json:"data"`
}

type accountEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// linkedIGResponse is the instagram_business_account field lookup.
type linkedIGResponse struct {
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}
