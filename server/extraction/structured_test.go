package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

func TestParseUnfenced(t *testing.T) {
	parsed, err := Parse(`{"shop_name": "Acme", "total_amount": "93", "items": []}`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", parsed["shop_name"])
	assert.Equal(t, "93", parsed["total_amount"])
}

func TestParseFenced(t *testing.T) {
	for _, raw := range []string{
		"```json\n{\"shop_name\": \"Acme\"}\n```",
		"```\n{\"shop_name\": \"Acme\"}\n```",
	} {
		parsed, err := Parse(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, "Acme", parsed["shop_name"])
	}
}

func TestParseNumericTotal(t *testing.T) {
	parsed, err := Parse(`{"total_amount": 93.5}`)
	require.NoError(t, err)
	assert.Equal(t, 93.5, parsed["total_amount"])
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"fence only", "```json\n```"},
		{"truncated", `{"shop_name": "Ac`},
		{"not an object", `[1, 2, 3]`},
		{"schema violation", `{"shop_name": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, svcerrors.IsCode(err, svcerrors.ErrCodeUpstreamFormat))
		})
	}
}
