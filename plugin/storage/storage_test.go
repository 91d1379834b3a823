package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "receipt.png", "receipt.png"},
		{"spaces", "my receipt 2024.jpg", "my_receipt_2024.jpg"},
		{"specials", "rec#eipt?*.png", "rec_eipt__.png"},
		{"unicode", "quittung-müller.png", "quittung-m_ller.png"},
		{"keeps dash underscore dot", "a-b_c.d", "a-b_c.d"},
		{"slash", "../../etc/passwd", ".._.._etc_passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestReceiptKey(t *testing.T) {
	key := ReceiptKey("my receipt.png")
	assert.True(t, strings.HasPrefix(key, "receipts/"))
	assert.True(t, strings.HasSuffix(key, "_my_receipt.png"))

	// Keys must be unique per call.
	assert.NotEqual(t, key, ReceiptKey("my receipt.png"))
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "receipts/thumb_abc_r.png", ThumbnailKey("receipts/abc_r.png"))
	assert.Equal(t, "thumb_other/abc.png", ThumbnailKey("other/abc.png"))
}
