package store

// Receipt processing states. Uploaded receipts start as PENDING and are
// advanced by the extract runner.
const (
	ReceiptStatusPending    = "PENDING"
	ReceiptStatusProcessing = "PROCESSING"
	ReceiptStatusCompleted  = "COMPLETED"
	ReceiptStatusFailed     = "FAILED"
)

// Receipt represents one uploaded receipt image and the text the extraction
// pipeline derived from it. StructuredOutput holds the oracle's JSON, possibly
// wrapped in a markdown fence; callers parse it through server/extraction.
type Receipt struct {
	ID               string
	UserID           string
	ImageURL         string
	ThumbnailURL     string
	RawText          string
	StructuredOutput string
	Status           string
	CreatedTs        int64
	UpdatedTs        int64
}

// FindReceipt specifies the conditions for finding receipts.
type FindReceipt struct {
	ID     *string
	UserID *string
	Status *string
	// Limit caps the number of returned rows when set.
	Limit *int
}

// UpdateReceipt specifies a partial update. Nil fields are left untouched.
type UpdateReceipt struct {
	ID               string
	RawText          *string
	StructuredOutput *string
	Status           *string
	// TouchOnly bumps updated_ts without changing any other field.
	TouchOnly bool
}
