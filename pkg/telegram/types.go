package telegram

// Update is one incoming event delivered to the webhook endpoint.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is a Telegram chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// SendMessageRequest contains parameters for sending a text message.
type SendMessageRequest struct {
	ChatID           int64
	Text             string
	ParseMode        string
	ReplyToMessageID int64
	// DisablePreview suppresses the link preview card.
	DisablePreview bool
}

// SendVideoRequest contains parameters for uploading a video.
type SendVideoRequest struct {
	ChatID           int64
	Video            []byte
	FileName         string
	Caption          string
	ParseMode        string
	ReplyToMessageID int64
}
