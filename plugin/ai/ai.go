// Package ai provides the generative oracle client used for receipt
// structuring, smart action generation, and the chatbot.
package ai

import (
	"context"
)

// Completer is the minimal oracle surface the services depend on: one prompt
// in, one text completion out. Failures are returned as-is; retry and
// fallback policy belong to the caller.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
