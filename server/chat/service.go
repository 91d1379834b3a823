// Package chat accepts user prompts about their receipts and hands replies
// back once the asynchronous worker has produced them.
package chat

import (
	"context"
	"log/slog"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

// Service persists chat prompts and awaits their replies.
type Service struct {
	store   *store.Store
	awaiter *Awaiter
}

func NewService(st *store.Store) *Service {
	return &Service{
		store:   st,
		awaiter: NewAwaiter(st),
	}
}

// Ask stores the prompt as a PROCESSING message for the worker to pick up and
// blocks until the reply arrives or the wait ceiling elapses.
func (s *Service) Ask(ctx context.Context, userID, prompt string) (*store.ChatMessage, error) {
	if userID == "" {
		return nil, svcerrors.InvalidArgument("user_id is required")
	}
	if prompt == "" {
		return nil, svcerrors.InvalidArgument("prompt is required")
	}

	message, err := s.store.CreateChatMessage(ctx, &store.ChatMessage{
		UserID: userID,
		Prompt: prompt,
	})
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to save chat message", err)
	}
	slog.Info("queued chat prompt", "user", userID, "uid", message.UID)

	return s.awaiter.Await(ctx, message.UID)
}

// History lists the user's chat messages in creation order.
func (s *Service) History(ctx context.Context, userID string) ([]*store.ChatMessage, error) {
	if userID == "" {
		return nil, svcerrors.InvalidArgument("user_id is required")
	}
	messages, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{UserID: &userID})
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to list chat messages", err)
	}
	return messages, nil
}
