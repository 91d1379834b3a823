package store

// Chat message states. A message is created as PROCESSING and completed or
// failed by the chat runner.
const (
	ChatMessageStatusProcessing = "PROCESSING"
	ChatMessageStatusCompleted  = "COMPLETED"
	ChatMessageStatusFailed     = "FAILED"
)

// ChatMessage represents one chatbot exchange awaiting an asynchronous reply.
type ChatMessage struct {
	ID        int64
	UID       string
	UserID    string
	Prompt    string
	Response  string
	Status    string
	CreatedTs int64
	UpdatedTs int64
}

// FindChatMessage specifies the conditions for finding chat messages.
type FindChatMessage struct {
	UID    *string
	UserID *string
	Status *string
	Limit  *int
}

// UpdateChatMessage specifies a partial update keyed by UID.
type UpdateChatMessage struct {
	UID      string
	Response *string
	Status   *string
}
