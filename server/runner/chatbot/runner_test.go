package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugiwara-labs/receiptsense/store"
	storetest "github.com/mugiwara-labs/receiptsense/store/test"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestRunOnceAnswersPendingMessages(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	receipt, err := ts.CreateReceipt(ctx, &store.Receipt{UserID: "user-1"})
	require.NoError(t, err)
	structured := `{"shop_name": "ACME STORE", "total_amount": "93.00"}`
	completed := store.ReceiptStatusCompleted
	require.NoError(t, ts.UpdateReceipt(ctx, &store.UpdateReceipt{
		ID:               receipt.ID,
		StructuredOutput: &structured,
		Status:           &completed,
	}))

	message, err := ts.CreateChatMessage(ctx, &store.ChatMessage{
		UserID: "user-1",
		Prompt: "How much did I spend at ACME?",
	})
	require.NoError(t, err)

	completer := &stubCompleter{response: "You spent 93.00."}
	runner := NewRunner(ts, completer)
	runner.RunOnce(ctx)

	got, err := ts.GetChatMessage(ctx, message.UID)
	require.NoError(t, err)
	assert.Equal(t, store.ChatMessageStatusCompleted, got.Status)
	assert.Equal(t, "You spent 93.00.", got.Response)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "ACME STORE", "receipt context is included")
	assert.Contains(t, completer.prompts[0], "How much did I spend at ACME?")
}

func TestRunOnceMarksFailedOnOracleError(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	message, err := ts.CreateChatMessage(ctx, &store.ChatMessage{UserID: "user-1", Prompt: "hi"})
	require.NoError(t, err)

	runner := NewRunner(ts, &stubCompleter{err: errors.New("boom")})
	runner.RunOnce(ctx)

	got, err := ts.GetChatMessage(ctx, message.UID)
	require.NoError(t, err)
	assert.Equal(t, store.ChatMessageStatusFailed, got.Status)
}

func TestRunOnceSkipsWithoutCompleter(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	message, err := ts.CreateChatMessage(ctx, &store.ChatMessage{UserID: "user-1", Prompt: "hi"})
	require.NoError(t, err)

	runner := NewRunner(ts, nil)
	runner.RunOnce(ctx)

	got, err := ts.GetChatMessage(ctx, message.UID)
	require.NoError(t, err)
	assert.Equal(t, store.ChatMessageStatusProcessing, got.Status)
}
