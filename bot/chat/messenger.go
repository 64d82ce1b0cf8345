package chat

// Messenger is the platform UI adapter interface.
// Each platform (WhatsApp, Telegram, web chat) implements this to handle
// platform-specific message delivery.
type Messenger interface {
	SendText(chatID, text string) error
	SendOptions(chatID, text string, options []Option) error
	SendTyping(chatID string) error
}

// Option is one selectable reply shown to the user, rendered as an inline
// button or a numbered text line depending on the platform.
type Option struct {
	Label string
	Value string
}
