package chat

import (
	"context"
	"time"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

const (
	defaultPollInterval = time.Second
	defaultWaitCeiling  = 30 * time.Second
)

// Awaiter waits for an asynchronous chat reply without blocking beyond its
// deadline. Client disconnects cancel the wait through the request context.
type Awaiter struct {
	store    *store.Store
	interval time.Duration
	ceiling  time.Duration
}

func NewAwaiter(st *store.Store) *Awaiter {
	return &Awaiter{
		store:    st,
		interval: defaultPollInterval,
		ceiling:  defaultWaitCeiling,
	}
}

// Await returns the message once it completes, or a TIMEOUT error when the
// ceiling elapses first. A FAILED or otherwise unexpected terminal state is an
// error, never an empty reply. Context cancellation aborts the wait
// immediately.
func (a *Awaiter) Await(ctx context.Context, uid string) (*store.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, a.ceiling)
	defer cancel()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		message, err := a.store.GetChatMessage(ctx, uid)
		if err != nil {
			return nil, svcerrors.UpstreamUnavailable("failed to load chat message", err)
		}
		if message == nil {
			return nil, svcerrors.NotFound("chat message not found: " + uid)
		}
		switch message.Status {
		case store.ChatMessageStatusProcessing:
		case store.ChatMessageStatusCompleted:
			return message, nil
		default:
			return nil, svcerrors.UpstreamUnavailable("chat reply failed: "+uid, nil)
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, svcerrors.Timeout("timed out waiting for chat reply: " + uid)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
