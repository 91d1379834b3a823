package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// PreferenceRecord model related methods.
	CreatePreferenceRecord(ctx context.Context, create *CreatePreferenceRecord) (*PreferenceRecord, error)
	ListPreferenceRecords(ctx context.Context, find *FindPreferenceRecord) ([]*PreferenceRecord, error)

	// Receipt model related methods.
	CreateReceipt(ctx context.Context, create *Receipt) (*Receipt, error)
	ListReceipts(ctx context.Context, find *FindReceipt) ([]*Receipt, error)
	UpdateReceipt(ctx context.Context, update *UpdateReceipt) error

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	UpdateChatMessage(ctx context.Context, update *UpdateChatMessage) (*ChatMessage, error)
}
