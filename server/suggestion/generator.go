// Package suggestion turns a structured receipt plus user preferences into
// smart action suggestions.
package suggestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	"github.com/mugiwara-labs/receiptsense/store"
)

// SmartAction is one generated suggestion keyed by preference name.
type SmartAction struct {
	Question string `json:"question"`
	Value    any    `json:"value,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// fallbackCurrency is the symbol the deterministic generator stamps on
// monetary suggestions, regardless of the currency stored on the preference.
const fallbackCurrency = "₹"

// Generator produces suggestions via the generative oracle with a
// deterministic local fallback.
type Generator struct {
	completer ai.Completer
}

// NewGenerator creates a Generator. A nil completer disables the oracle path;
// every call then runs the deterministic fallback.
func NewGenerator(completer ai.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate returns one suggestion per enabled preference. The oracle path and
// the fallback path produce the same shape; oracle and parse failures are
// absorbed, never surfaced. The result key set is always a subset of the
// enabled preference keys.
func (g *Generator) Generate(ctx context.Context, receipt map[string]any, preferences map[string]*store.PreferenceEntry) map[string]*SmartAction {
	enabled := make(map[string]*store.PreferenceEntry)
	for key, entry := range preferences {
		if entry != nil && entry.Enabled {
			enabled[key] = entry
		}
	}
	if len(enabled) == 0 {
		return map[string]*SmartAction{}
	}

	if g.completer != nil {
		actions, err := g.fromOracle(ctx, receipt, enabled)
		if err == nil {
			return actions
		}
		slog.Warn("suggestion oracle failed, using fallback", "err", err)
	}
	return fallbackActions(receipt, enabled)
}

func (g *Generator) fromOracle(ctx context.Context, receipt map[string]any, enabled map[string]*store.PreferenceEntry) (map[string]*SmartAction, error) {
	prompt, err := buildPrompt(receipt, enabled)
	if err != nil {
		return nil, err
	}
	response, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		SmartActions map[string]*SmartAction `json:"smartactions"`
	}
	if err := json.Unmarshal([]byte(ai.StripFence(response)), &parsed); err != nil {
		return nil, fmt.Errorf("malformed oracle response: %w", err)
	}

	// The oracle sometimes invents keys; keep only enabled preferences.
	actions := make(map[string]*SmartAction, len(parsed.SmartActions))
	for key, action := range parsed.SmartActions {
		if _, ok := enabled[key]; ok && action != nil {
			actions[key] = action
		}
	}
	return actions, nil
}

// fallbackActions synthesizes templated suggestions for the fixed recognized
// key set. Unrecognized enabled keys are dropped.
func fallbackActions(receipt map[string]any, enabled map[string]*store.PreferenceEntry) map[string]*SmartAction {
	shopName := receiptString(receipt, "shop_name", "this store")
	totalAmount := receiptString(receipt, "total_amount", "0")

	actions := make(map[string]*SmartAction)
	for key, entry := range enabled {
		switch key {
		case "auto_split_receipt":
			value := entry.Value
			if value == nil {
				value = totalAmount
			}
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Would you like to auto-split this %s%s receipt with friends?", fallbackCurrency, totalAmount),
				Value:    value,
				Currency: fallbackCurrency,
			}
		case "detect_similar_purchases":
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Detect similar purchases from %s?", shopName),
			}
		case "export_format":
			formats := exportFormats(entry.Value)
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Export this receipt in %s format?", strings.Join(formats, " and ")),
				Value:    entry.Value,
			}
		case "generate_invoice_pdf":
			email := valueString(entry.Value, "your email")
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Would you like a PDF invoice sent to %s?", email),
				Value:    email,
			}
		case "preferred_language":
			lang := valueString(entry.Value, "English")
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Display in %s", lang),
				Value:    lang,
			}
		case "receipt_expiry":
			days := 90
			if entry.Days != nil {
				days = *entry.Days
			}
			retention := fmt.Sprintf("for %d days", days)
			if days == -1 {
				retention = "permanently"
			}
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("This receipt will be saved %s.", retention),
				Value:    days,
			}
		case "savings_pot":
			amount := valueString(entry.Value, "0")
			actions[key] = &SmartAction{
				Question: fmt.Sprintf("Add %s%s from this receipt to your savings pot?", fallbackCurrency, amount),
				Value:    entry.Value,
				Currency: fallbackCurrency,
			}
		}
	}
	return actions
}

func receiptString(receipt map[string]any, field, fallback string) string {
	if receipt == nil {
		return fallback
	}
	if v, ok := receipt[field]; ok && v != nil {
		return valueString(v, fallback)
	}
	return fallback
}

// valueString renders a preference or receipt value for interpolation.
// Integral floats keep a trailing ".0" (250.0, not 250) so monetary values
// read as amounts.
func valueString(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		if t == "" {
			return fallback
		}
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func exportFormats(v any) []string {
	switch t := v.(type) {
	case []any:
		formats := make([]string, 0, len(t))
		for _, f := range t {
			formats = append(formats, valueString(f, ""))
		}
		if len(formats) > 0 {
			return formats
		}
	case []string:
		if len(t) > 0 {
			return t
		}
	case string:
		if t != "" {
			return []string{t}
		}
	}
	return []string{"PDF"}
}
