package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "tesseract", cfg.TesseractPath)
	assert.Equal(t, "eng", cfg.Languages)
	assert.Empty(t, cfg.DataPath)
}

func TestNewClientNilConfig(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, "tesseract", c.config.TesseractPath)
}

func TestIsSupported(t *testing.T) {
	c := NewClient(nil)

	tests := []struct {
		mimeType string
		expected bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/jpg", true},
		{"IMAGE/PNG", true},
		{"image/webp", true},
		{"image/tiff", false},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsSupported(tt.mimeType))
		})
	}
}

func TestExtractTextUnsupportedMime(t *testing.T) {
	c := NewClient(nil)
	_, err := c.ExtractText(context.Background(), []byte("not an image"), "application/pdf")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported MIME type")
}

func TestIsAvailableMissingBinary(t *testing.T) {
	c := NewClient(&Config{TesseractPath: "/nonexistent/tesseract"})
	assert.False(t, c.IsAvailable(context.Background()))
}
