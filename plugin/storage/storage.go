// Package storage defines the object store used for receipt images.
package storage

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

// ObjectStore is the blob storage surface: write a blob, get back a publicly
// reachable URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w.\-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with an
// underscore so uploaded names are safe as object keys.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ReceiptKey builds the object key for an uploaded receipt image.
func ReceiptKey(filename string) string {
	return "receipts/" + uuid.NewString() + "_" + SanitizeFilename(filename)
}

// ThumbnailKey builds the object key for a receipt thumbnail derived from the
// receipt key.
func ThumbnailKey(receiptKey string) string {
	const prefix = "receipts/"
	if len(receiptKey) > len(prefix) && receiptKey[:len(prefix)] == prefix {
		return prefix + "thumb_" + receiptKey[len(prefix):]
	}
	return "thumb_" + receiptKey
}
