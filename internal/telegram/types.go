package telegram

import "strings"

// Update is the envelope Telegram pushes to the webhook. Only message updates
// are registered, so everything else stays nil.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message carries an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// User identifies the sender of a message.
type User struct {
	ID int64 `json:"id"`
}

// BotCommand is one entry of the bot's command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// IsPrivate reports whether the chat is a one-on-one conversation.
func (c Chat) IsPrivate() bool {
	return c.Type == "private"
}

// SenderID returns the submitting user's identifier, falling back to the chat
// identifier for messages without a sender (they coincide in private chats).
func (m *Message) SenderID() int64 {
	if m.From != nil {
		return m.From.ID
	}
	return m.Chat.ID
}

// Command extracts a bot command from the message text: "/report" yields
// "report", "/report@somebot arg" yields "report". Plain text yields "".
func (m *Message) Command() string {
	if m == nil || !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	cmd := strings.TrimPrefix(strings.Fields(m.Text)[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
