package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnvVars() {
	vars := []string{
		"RECEIPTSENSE_AI_ENABLED",
		"RECEIPTSENSE_AI_BASE_URL",
		"RECEIPTSENSE_AI_API_KEY",
		"RECEIPTSENSE_AI_CHAT_MODEL",
		"RECEIPTSENSE_S3_BUCKET",
		"RECEIPTSENSE_S3_REGION",
		"RECEIPTSENSE_S3_ENDPOINT",
		"RECEIPTSENSE_S3_ACCESS_KEY",
		"RECEIPTSENSE_S3_SECRET_KEY",
		"RECEIPTSENSE_S3_PUBLIC_URL",
		"RECEIPTSENSE_OCR_ENABLED",
		"RECEIPTSENSE_OCR_TESSERACT_PATH",
		"RECEIPTSENSE_OCR_TESSDATA_PATH",
		"RECEIPTSENSE_OCR_LANGUAGES",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnvVars()

	p := &Profile{}
	p.FromEnv()

	assert.False(t, p.AIEnabled)
	assert.Equal(t, "https://api.openai.com/v1", p.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.AIChatModel)
	assert.Equal(t, "us-east-1", p.S3Region)
	assert.Equal(t, "tesseract", p.TesseractPath)
	assert.Equal(t, "eng", p.OCRLanguages)
	assert.False(t, p.OCREnabled)
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars()
	t.Setenv("RECEIPTSENSE_AI_ENABLED", "true")
	t.Setenv("RECEIPTSENSE_AI_API_KEY", "sk-test")
	t.Setenv("RECEIPTSENSE_AI_CHAT_MODEL", "gpt-4o")
	t.Setenv("RECEIPTSENSE_S3_BUCKET", "receipts")
	t.Setenv("RECEIPTSENSE_OCR_ENABLED", "true")

	p := &Profile{}
	p.FromEnv()

	assert.True(t, p.AIEnabled)
	assert.True(t, p.IsAIEnabled())
	assert.Equal(t, "gpt-4o", p.AIChatModel)
	assert.True(t, p.IsObjectStorageEnabled())
	assert.True(t, p.OCREnabled)
}

func TestIsAIEnabledRequiresKey(t *testing.T) {
	clearEnvVars()
	t.Setenv("RECEIPTSENSE_AI_ENABLED", "true")

	p := &Profile{}
	p.FromEnv()

	assert.True(t, p.AIEnabled)
	assert.False(t, p.IsAIEnabled())
}

func TestValidateDefaultsModeAndDSN(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{
		Mode:   "invalid",
		Data:   dir,
		Driver: "sqlite",
	}
	err := p.Validate()
	assert.NoError(t, err)
	assert.Equal(t, "demo", p.Mode)
	assert.Contains(t, p.DSN, "receiptsense_demo.db")
}
