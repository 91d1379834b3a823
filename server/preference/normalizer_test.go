package preference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

func submittedBool(b bool) SubmittedValue {
	return SubmittedValue{Bool: &b}
}

func submittedStructured(enabled bool, value any) SubmittedValue {
	return SubmittedValue{Structured: &StructuredValue{Enabled: enabled, Value: value}}
}

func TestNormalizeBoolean(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		"detect_similar_purchases": submittedBool(true),
		"some_future_toggle":       submittedBool(false),
	})
	require.NoError(t, err)

	assert.True(t, entries["detect_similar_purchases"].Enabled)
	assert.NotZero(t, entries["detect_similar_purchases"].ConfiguredAt)
	assert.Nil(t, entries["detect_similar_purchases"].Value)

	assert.False(t, entries["some_future_toggle"].Enabled)
}

func TestNormalizeAutoSplit(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		KeyAutoSplitReceipt: submittedStructured(true, "12.50"),
	})
	require.NoError(t, err)

	entry := entries[KeyAutoSplitReceipt]
	assert.Equal(t, 12.5, entry.Value)
	assert.Equal(t, "USD", entry.Currency)

	_, err = Normalize(map[string]SubmittedValue{
		KeyAutoSplitReceipt: submittedStructured(true, "not a number"),
	})
	require.Error(t, err)
	assert.True(t, svcerrors.IsCode(err, svcerrors.ErrCodeInvalidPreference))
}

func TestNormalizeInvoiceEmail(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		KeyGenerateInvoicePDF: submittedStructured(true, "BOB@EXAMPLE.COM"),
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", entries[KeyGenerateInvoicePDF].Value)

	for _, bad := range []any{nil, "", "no-at-sign"} {
		_, err := Normalize(map[string]SubmittedValue{
			KeyGenerateInvoicePDF: submittedStructured(true, bad),
		})
		assert.Error(t, err, "value %v should be rejected", bad)
	}
}

func TestNormalizeExportFormat(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		KeyExportFormat: submittedStructured(true, []any{"PDF", "CSV"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"PDF", "CSV"}, entries[KeyExportFormat].Value)

	for _, bad := range []any{nil, []any{}, "PDF", []any{1, 2}} {
		_, err := Normalize(map[string]SubmittedValue{
			KeyExportFormat: submittedStructured(true, bad),
		})
		assert.Error(t, err, "value %v should be rejected", bad)
	}
}

func TestNormalizeSavingsPot(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		KeySavingsPot: submittedStructured(true, "250"),
	})
	require.NoError(t, err)

	entry := entries[KeySavingsPot]
	assert.Equal(t, 250.0, entry.Value)
	assert.Equal(t, "USD", entry.Currency)

	for _, bad := range []any{"-5", "0", "abc"} {
		_, err := Normalize(map[string]SubmittedValue{
			KeySavingsPot: submittedStructured(true, bad),
		})
		assert.Error(t, err, "value %v should be rejected", bad)
	}
}

func TestNormalizeReceiptExpiry(t *testing.T) {
	tests := []struct {
		label string
		days  int
	}{
		{"30 days", 30},
		{"90 days", 90},
		{"6 months", 180},
		{"1 year", 365},
		{"Never delete", -1},
		{"whenever", 90},
	}
	for _, tt := range tests {
		entries, err := Normalize(map[string]SubmittedValue{
			KeyReceiptExpiry: submittedStructured(true, tt.label),
		})
		require.NoError(t, err)
		require.NotNil(t, entries[KeyReceiptExpiry].Days)
		assert.Equal(t, tt.days, *entries[KeyReceiptExpiry].Days, "label %q", tt.label)
	}
}

func TestNormalizePreferredLanguage(t *testing.T) {
	entries, err := Normalize(map[string]SubmittedValue{
		KeyPreferredLanguage: submittedStructured(true, "Default (English)"),
	})
	require.NoError(t, err)
	require.NotNil(t, entries[KeyPreferredLanguage].IsDefault)
	assert.True(t, *entries[KeyPreferredLanguage].IsDefault)

	entries, err = Normalize(map[string]SubmittedValue{
		KeyPreferredLanguage: submittedStructured(true, "German"),
	})
	require.NoError(t, err)
	require.NotNil(t, entries[KeyPreferredLanguage].IsDefault)
	assert.False(t, *entries[KeyPreferredLanguage].IsDefault)
}

func TestNormalizeDisabledSkipsValidation(t *testing.T) {
	// A disabled entry keeps its raw value and runs no key rules, even when the
	// value would be invalid if enabled.
	entries, err := Normalize(map[string]SubmittedValue{
		KeySavingsPot: submittedStructured(false, "not a number"),
	})
	require.NoError(t, err)
	assert.False(t, entries[KeySavingsPot].Enabled)
	assert.Equal(t, "not a number", entries[KeySavingsPot].Value)
	assert.Empty(t, entries[KeySavingsPot].Currency)
}

func TestSubmittedValueUnmarshal(t *testing.T) {
	var submission Submission
	payload := `{
		"user_id": "u1",
		"preferences": {
			"plain_bool": true,
			"structured": {"enabled": true, "value": "250"},
			"loose_object": {"foo": "bar"},
			"loose_string": "",
			"loose_number": 3
		}
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &submission))

	assert.Equal(t, "u1", submission.UserID)
	require.NotNil(t, submission.Preferences["plain_bool"].Bool)
	assert.True(t, *submission.Preferences["plain_bool"].Bool)

	structured := submission.Preferences["structured"].Structured
	require.NotNil(t, structured)
	assert.True(t, structured.Enabled)
	assert.Equal(t, "250", structured.Value)

	require.NotNil(t, submission.Preferences["loose_object"].Bool)
	assert.True(t, *submission.Preferences["loose_object"].Bool)

	require.NotNil(t, submission.Preferences["loose_string"].Bool)
	assert.False(t, *submission.Preferences["loose_string"].Bool)

	require.NotNil(t, submission.Preferences["loose_number"].Bool)
	assert.True(t, *submission.Preferences["loose_number"].Bool)
}
