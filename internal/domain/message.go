package domain

import "fmt"

// SystemSender is the sender name of relay-generated notices.
const SystemSender = "system"

// ChatMessage is the payload of an outbound "message" event.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func NewChatMessage(sender, text string) ChatMessage {
	return ChatMessage{Sender: sender, Text: text}
}

func SystemMessage(format string, args ...any) ChatMessage {
	return ChatMessage{Sender: SystemSender, Text: fmt.Sprintf(format, args...)}
}
