// Package extraction parses and validates the structured receipt JSON
// produced by the OCR+LLM pipeline.
package extraction

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

// receiptSchema is the minimal contract on structured receipt output. Fields
// beyond these pass through untouched; readers access them defensively.
const receiptSchema = `{
	"type": "object",
	"properties": {
		"shop_name": {"type": "string"},
		"total_amount": {"type": ["string", "number"]},
		"items": {"type": "array"}
	}
}`

var compiledSchema = jsonschema.MustCompileString("receipt.json", receiptSchema)

// Parse strips an optional markdown fence from raw structured output and
// decodes it as a JSON object. The result is validated against the receipt
// schema; failures surface as UPSTREAM_FORMAT errors since there is no
// fallback for an unparseable receipt.
func Parse(raw string) (map[string]any, error) {
	cleaned := ai.StripFence(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, svcerrors.UpstreamFormat("structured output is empty", nil)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, svcerrors.UpstreamFormat("invalid JSON in structured output", err)
	}

	if err := compiledSchema.Validate(map[string]any(parsed)); err != nil {
		return nil, svcerrors.UpstreamFormat("structured output does not match receipt schema", err)
	}
	return parsed, nil
}
