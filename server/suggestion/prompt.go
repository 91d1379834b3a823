package suggestion

import (
	"encoding/json"
	"fmt"

	"github.com/mugiwara-labs/receiptsense/store"
)

const promptTemplate = `You are a smart action suggesting agent.
Analyze two inputs:
1. structured_output: JSON of extracted receipt data.
2. user_preferences: JSON of user-configured preferences.

Your task:
For each user preference where "enabled": true, generate a **smart, personalized suggestion** based on the receipt data.

Output format:
{ "smartactions": { "preference_key": { "question": "...", "value": ..., "currency": ... } } }

Example behaviors:
- auto_split_receipt → Suggest splitting total_amount.
- detect_similar_purchases → Suggest finding similar purchases from shop_name.
- export_format → Ask if user wants PDF/CSV export.
- generate_invoice_pdf → Ask if PDF should be sent to preferred email.
- preferred_language → Just include the language.
- receipt_expiry → Mention the number of days.
- savings_pot → Suggest saving an amount.

Only return valid JSON under a top-level key "smartactions".

structured_output:
%s

user_preferences:
%s
`

// buildPrompt serializes the receipt and the enabled preferences into the
// oracle instruction prompt.
func buildPrompt(receipt map[string]any, enabled map[string]*store.PreferenceEntry) (string, error) {
	receiptJSON, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return "", err
	}
	prefsJSON, err := json.MarshalIndent(enabled, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, receiptJSON, prefsJSON), nil
}
