// Package chatbot provides the background runner that answers queued chat
// prompts using the user's receipt history as context.
package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	"github.com/mugiwara-labs/receiptsense/server/extraction"
	"github.com/mugiwara-labs/receiptsense/store"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 10
	replyTimeout     = 60 * time.Second
)

// Runner claims PROCESSING chat messages and completes them via the oracle.
type Runner struct {
	store     *store.Store
	completer ai.Completer
	interval  time.Duration
	batchSize int
}

// NewRunner creates a chat runner. A nil completer disables it.
func NewRunner(st *store.Store, completer ai.Completer) *Runner {
	return &Runner{
		store:     st,
		completer: completer,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Run starts the background loop.
func (r *Runner) Run(ctx context.Context) {
	if r.completer == nil {
		slog.Info("chat runner disabled (no AI provider configured)")
		return
	}
	slog.Info("chat runner started", "interval", r.interval)

	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("chat runner stopped")
			return
		}
	}
}

// RunOnce answers one batch of pending messages.
func (r *Runner) RunOnce(ctx context.Context) {
	if r.completer == nil {
		return
	}

	processing := store.ChatMessageStatusProcessing
	messages, err := r.store.ListChatMessages(ctx, &store.FindChatMessage{
		Status: &processing,
		Limit:  &r.batchSize,
	})
	if err != nil {
		slog.Error("failed to list pending chat messages", "err", err)
		return
	}

	for _, message := range messages {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := r.answer(ctx, message); err != nil {
			slog.Warn("failed to answer chat message", "uid", message.UID, "err", err)
			failed := store.ChatMessageStatusFailed
			if _, err := r.store.UpdateChatMessage(ctx, &store.UpdateChatMessage{
				UID:    message.UID,
				Status: &failed,
			}); err != nil {
				slog.Error("failed to mark chat message failed", "uid", message.UID, "err", err)
			}
		}
	}
}

func (r *Runner) answer(ctx context.Context, message *store.ChatMessage) error {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	contextJSON, err := r.receiptContext(ctx, message.UserID)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Based on this context: %s, respond only to this prompt: %s", contextJSON, message.Prompt)
	response, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	response = strings.TrimSpace(response)
	completed := store.ChatMessageStatusCompleted
	if _, err := r.store.UpdateChatMessage(ctx, &store.UpdateChatMessage{
		UID:      message.UID,
		Response: &response,
		Status:   &completed,
	}); err != nil {
		return err
	}
	slog.Info("answered chat message", "uid", message.UID, "user", message.UserID)
	return nil
}

// receiptContext collects the user's structured receipts as a JSON array.
// Receipts with unparseable structured output are skipped rather than failing
// the whole reply.
func (r *Runner) receiptContext(ctx context.Context, userID string) (string, error) {
	completed := store.ReceiptStatusCompleted
	receipts, err := r.store.ListReceipts(ctx, &store.FindReceipt{
		UserID: &userID,
		Status: &completed,
	})
	if err != nil {
		return "", err
	}

	parsed := []map[string]any{}
	for _, receipt := range receipts {
		if receipt.StructuredOutput == "" {
			continue
		}
		structured, err := extraction.Parse(receipt.StructuredOutput)
		if err != nil {
			slog.Warn("skipping receipt with malformed structured output", "receipt", receipt.ID, "err", err)
			continue
		}
		parsed = append(parsed, structured)
	}

	contextJSON, err := json.Marshal(parsed)
	if err != nil {
		return "", err
	}
	return string(contextJSON), nil
}
