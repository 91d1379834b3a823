package preference

import (
	"encoding/json"
)

// SubmittedValue is one client-submitted preference: either a plain boolean
// or a structured {enabled, value} object. The union is resolved exactly once
// here, at the JSON boundary; downstream code never re-inspects raw shapes.
type SubmittedValue struct {
	Bool       *bool
	Structured *StructuredValue
}

// StructuredValue is the structured form of a submitted preference.
type StructuredValue struct {
	Enabled bool `json:"enabled"`
	Value   any  `json:"value,omitempty"`
}

// Submission is one preference submission payload.
type Submission struct {
	UserID      string                    `json:"user_id"`
	UserName    string                    `json:"user_name"`
	UserEmail   string                    `json:"user_email"`
	Preferences map[string]SubmittedValue `json:"preferences"`
}

// UnmarshalJSON resolves the union. Objects carrying an "enabled" field are
// structured values; every other shape collapses to a boolean via truthiness.
func (v *SubmittedValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Bool = &b
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		if _, ok := obj["enabled"]; ok {
			structured := &StructuredValue{}
			if err := json.Unmarshal(data, structured); err != nil {
				return err
			}
			v.Structured = structured
			return nil
		}
		truth := len(obj) > 0
		v.Bool = &truth
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	truth := truthy(raw)
	v.Bool = &truth
	return nil
}

// truthy mirrors loose boolean coercion: null, zero, empty string, and empty
// collections are false, everything else true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
