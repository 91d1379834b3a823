package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreatePreferenceRecord assigns a fresh preference id and persists the
// record. Every call creates a new row even when the payload is identical to
// a prior submission; retries are not deduplicated.
func (s *Store) CreatePreferenceRecord(ctx context.Context, create *CreatePreferenceRecord) (*PreferenceRecord, error) {
	create.PreferenceID = uuid.NewString()
	if create.Version == "" {
		create.Version = PreferenceRecordVersion
	}
	return s.driver.CreatePreferenceRecord(ctx, create)
}

// GetPreferenceRecord returns the record with the given preference id, or nil.
func (s *Store) GetPreferenceRecord(ctx context.Context, preferenceID string) (*PreferenceRecord, error) {
	records, err := s.driver.ListPreferenceRecords(ctx, &FindPreferenceRecord{PreferenceID: &preferenceID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FindLatestPreferenceRecord returns the newest record for the user, or nil.
// Rows are ordered by creation time; the underlying query is deterministic.
func (s *Store) FindLatestPreferenceRecord(ctx context.Context, userID string) (*PreferenceRecord, error) {
	records, err := s.driver.ListPreferenceRecords(ctx, &FindPreferenceRecord{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// CreateReceipt persists a new receipt row. The id is assigned here when the
// caller leaves it empty.
func (s *Store) CreateReceipt(ctx context.Context, create *Receipt) (*Receipt, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.Status == "" {
		create.Status = ReceiptStatusPending
	}
	return s.driver.CreateReceipt(ctx, create)
}

// GetReceipt returns the receipt with the given id, or nil.
func (s *Store) GetReceipt(ctx context.Context, id string) (*Receipt, error) {
	receipts, err := s.driver.ListReceipts(ctx, &FindReceipt{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	return receipts[0], nil
}

func (s *Store) ListReceipts(ctx context.Context, find *FindReceipt) ([]*Receipt, error) {
	return s.driver.ListReceipts(ctx, find)
}

// GetLatestReceipt returns the most recently updated receipt for the user, or nil.
func (s *Store) GetLatestReceipt(ctx context.Context, userID string) (*Receipt, error) {
	limit := 1
	receipts, err := s.driver.ListReceipts(ctx, &FindReceipt{UserID: &userID, Limit: &limit})
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	return receipts[0], nil
}

func (s *Store) UpdateReceipt(ctx context.Context, update *UpdateReceipt) error {
	return s.driver.UpdateReceipt(ctx, update)
}

// TouchReceipt bumps the receipt's updated timestamp.
func (s *Store) TouchReceipt(ctx context.Context, id string) error {
	return s.driver.UpdateReceipt(ctx, &UpdateReceipt{ID: id, TouchOnly: true})
}

// CreateChatMessage persists a new chat message in PROCESSING state and
// assigns its UID.
func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.Status == "" {
		create.Status = ChatMessageStatusProcessing
	}
	return s.driver.CreateChatMessage(ctx, create)
}

// GetChatMessage returns the chat message with the given uid, or nil.
func (s *Store) GetChatMessage(ctx context.Context, uid string) (*ChatMessage, error) {
	messages, err := s.driver.ListChatMessages(ctx, &FindChatMessage{UID: &uid})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// ListChatMessages lists chat messages matching the find conditions.
func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) UpdateChatMessage(ctx context.Context, update *UpdateChatMessage) (*ChatMessage, error) {
	return s.driver.UpdateChatMessage(ctx, update)
}
