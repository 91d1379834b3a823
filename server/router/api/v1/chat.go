package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

type chatResponse struct {
	Response string `json:"response"`
}

// Chat queues the prompt for the chat runner and waits for the reply.
func (s *APIV1Service) Chat(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}
	prompt, ok := requireQueryParam(c, "prompt")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("prompt is required"))
	}

	message, err := s.ChatService.Ask(c.Request().Context(), userID, prompt)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, chatResponse{Response: message.Response})
}

type chatHistoryEntry struct {
	UID      string `json:"uid"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Status   string `json:"status"`
	AskedAt  int64  `json:"asked_at"`
}

// ChatHistory returns the user's past prompts and replies.
func (s *APIV1Service) ChatHistory(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	messages, err := s.ChatService.History(c.Request().Context(), userID)
	if err != nil {
		return replyError(c, err)
	}

	entries := make([]chatHistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, chatHistoryEntry{
			UID:      m.UID,
			Prompt:   m.Prompt,
			Response: m.Response,
			Status:   m.Status,
			AskedAt:  m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"messages": entries,
		"count":    len(entries),
	})
}
