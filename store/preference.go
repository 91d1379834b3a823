package store

// PreferenceRecordVersion is the schema version tag written into every record.
const PreferenceRecordVersion = "1.0"

// PreferenceEntry is the canonical, validated form of one submitted preference.
// Value keeps whatever shape the key-specific rules produced (float, string,
// string list, or the raw submitted value for disabled keys).
type PreferenceEntry struct {
	ConfiguredAt int64 `json:"configured_at"`
	Enabled      bool  `json:"enabled"`
	Value        any   `json:"value,omitempty"`
	// IsDefault is set for preferred_language entries.
	IsDefault *bool `json:"is_default,omitempty"`
	// Currency is set for monetary entries (auto_split_receipt, savings_pot).
	Currency string `json:"currency,omitempty"`
	// Days is set for receipt_expiry entries.
	Days *int `json:"days,omitempty"`
}

// PreferenceRecord is one persisted preference submission. A user may
// accumulate several records; FindLatestPreferenceRecord returns the newest.
type PreferenceRecord struct {
	PreferenceID string
	UserID       string
	UserName     string
	UserEmail    string
	CreatedTs    int64
	UpdatedTs    int64
	Version      string
	Preferences  map[string]*PreferenceEntry
}

// CreatePreferenceRecord specifies the data for persisting a new record.
// PreferenceID and timestamps are assigned by the store.
type CreatePreferenceRecord struct {
	PreferenceID string
	UserID       string
	UserName     string
	UserEmail    string
	Version      string
	Preferences  map[string]*PreferenceEntry
}

// FindPreferenceRecord specifies the conditions for finding preference records.
type FindPreferenceRecord struct {
	PreferenceID *string
	UserID       *string
}
