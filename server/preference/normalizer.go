// Package preference validates and canonicalizes user preference submissions
// and persists the resulting records.
package preference

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

// Recognized preference keys. Anything else is stored as a plain flag with no
// further checks.
const (
	KeyPreferredLanguage      = "preferred_language"
	KeyAutoSplitReceipt       = "auto_split_receipt"
	KeyGenerateInvoicePDF     = "generate_invoice_pdf"
	KeyExportFormat           = "export_format"
	KeySavingsPot             = "savings_pot"
	KeyReceiptExpiry          = "receipt_expiry"
	KeyDetectSimilarPurchases = "detect_similar_purchases"
)

// expiryDays maps receipt_expiry labels to retention days. Unknown labels
// silently default to 90.
var expiryDays = map[string]int{
	"30 days":      30,
	"60 days":      60,
	"90 days":      90,
	"6 months":     180,
	"1 year":       365,
	"Never delete": -1,
}

const defaultExpiryDays = 90

// Normalize converts a raw submission into canonical preference entries.
// Recognized keys with enabled=true are validated per-key; the first invalid
// entry rejects the whole submission. configured_at is stamped with the
// current server time on every entry.
func Normalize(submission map[string]SubmittedValue) (map[string]*store.PreferenceEntry, error) {
	now := time.Now().Unix()
	entries := make(map[string]*store.PreferenceEntry, len(submission))

	for key, submitted := range submission {
		entry := &store.PreferenceEntry{ConfiguredAt: now}

		if submitted.Structured == nil {
			enabled := submitted.Bool != nil && *submitted.Bool
			entry.Enabled = enabled
			entries[key] = entry
			continue
		}

		structured := submitted.Structured
		entry.Enabled = structured.Enabled
		entry.Value = structured.Value

		if structured.Enabled {
			if err := applyKeyRules(key, entry, structured.Value); err != nil {
				return nil, err
			}
		}
		entries[key] = entry
	}

	return entries, nil
}

// applyKeyRules runs the key-specific transform/validation for an enabled
// structured entry. Unrecognized keys pass through untouched.
func applyKeyRules(key string, entry *store.PreferenceEntry, value any) error {
	switch key {
	case KeyPreferredLanguage:
		isDefault := strings.Contains(stringify(value), "Default")
		entry.IsDefault = &isDefault

	case KeyAutoSplitReceipt:
		amount, err := toFloat(value)
		if err != nil {
			return svcerrors.InvalidPreference(key, "invalid amount for auto_split_receipt")
		}
		entry.Value = amount
		entry.Currency = "USD"

	case KeyGenerateInvoicePDF:
		email := stringify(value)
		if value == nil || email == "" || !strings.Contains(email, "@") {
			return svcerrors.InvalidPreference(key, "invalid email for invoice")
		}
		entry.Value = strings.ToLower(email)

	case KeyExportFormat:
		formats, ok := value.([]any)
		if !ok || len(formats) == 0 {
			return svcerrors.InvalidPreference(key, "at least one export format must be selected")
		}
		for _, f := range formats {
			if _, ok := f.(string); !ok {
				return svcerrors.InvalidPreference(key, "at least one export format must be selected")
			}
		}

	case KeySavingsPot:
		amount, err := toFloat(value)
		if err != nil || amount <= 0 {
			return svcerrors.InvalidPreference(key, "invalid savings amount")
		}
		entry.Value = amount
		entry.Currency = "USD"

	case KeyReceiptExpiry:
		days, ok := expiryDays[stringify(value)]
		if !ok {
			days = defaultExpiryDays
		}
		entry.Days = &days
	}
	return nil
}

// stringify renders a submitted value the way a loosely-typed client would
// see it.
func stringify(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// toFloat parses numbers and numeric strings.
func toFloat(value any) (float64, error) {
	switch t := value.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}
