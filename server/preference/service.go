package preference

import (
	"context"
	"log/slog"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

// Service normalizes submissions and persists preference records.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Submit validates the submission and writes a new preference record. The
// whole submission is rejected on the first invalid recognized entry; nothing
// is persisted in that case.
func (s *Service) Submit(ctx context.Context, submission *Submission) (*store.PreferenceRecord, error) {
	if submission.UserID == "" {
		return nil, svcerrors.InvalidArgument("user_id is required")
	}
	entries, err := Normalize(submission.Preferences)
	if err != nil {
		slog.Warn("rejected preference submission", "user", submission.UserID, "err", err)
		return nil, err
	}

	record, err := s.store.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID:      submission.UserID,
		UserName:    submission.UserName,
		UserEmail:   submission.UserEmail,
		Preferences: entries,
	})
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to save preferences", err)
	}
	slog.Info("saved preferences", "user", submission.UserID, "preference", record.PreferenceID, "keys", len(entries))
	return record, nil
}

// Get returns the record with the given preference id.
func (s *Service) Get(ctx context.Context, preferenceID string) (*store.PreferenceRecord, error) {
	record, err := s.store.GetPreferenceRecord(ctx, preferenceID)
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to load preferences", err)
	}
	if record == nil {
		return nil, svcerrors.NotFound("preference record not found: " + preferenceID)
	}
	return record, nil
}

// Latest returns the newest preference record for the user.
func (s *Service) Latest(ctx context.Context, userID string) (*store.PreferenceRecord, error) {
	record, err := s.store.FindLatestPreferenceRecord(ctx, userID)
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to load preferences", err)
	}
	if record == nil {
		return nil, svcerrors.NotFound("no preferences found for user: " + userID)
	}
	return record, nil
}
