package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "raw json untouched",
			raw:  `{"total": 11.0}`,
			want: `{"total": 11.0}`,
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "\n  {\"total\": 11.0}\n\n",
			want: `{"total": 11.0}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"total\": 11.0}\n```",
			want: `{"total": 11.0}`,
		},
		{
			name: "uppercase fence tag",
			raw:  "```JSON\n{\"total\": 11.0}\n```",
			want: `{"total": 11.0}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"total\": 11.0}\n```",
			want: `{"total": 11.0}`,
		},
		{
			name: "single line fence",
			raw:  "```json{\"total\": 11.0}```",
			want: `{"total": 11.0}`,
		},
		{
			name: "prose before and after the fence",
			raw:  "Here is the receipt you asked for:\n```json\n{\"total\": 11.0}\n```\nLet me know if anything looks off.",
			want: `{"total": 11.0}`,
		},
		{
			name: "unterminated fence",
			raw:  "```json\n{\"total\": 11.0}",
			want: `{"total": 11.0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Run("object embedded in prose", func(t *testing.T) {
		got, ok := ExtractJSON(`The split works out as {"total": 11.0} overall.`)
		require.True(t, ok)
		assert.Equal(t, `{"total": 11.0}`, got)
	})

	t.Run("array embedded in prose", func(t *testing.T) {
		got, ok := ExtractJSON(`Shares: [1, 2] as requested.`)
		require.True(t, ok)
		assert.Equal(t, `[1, 2]`, got)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, ok := ExtractJSON("sorry, I could not read the receipt")
		assert.False(t, ok)
	})

	t.Run("opener without closer", func(t *testing.T) {
		_, ok := ExtractJSON(`{"total": 11.0`)
		assert.False(t, ok)
	})
}

func TestDecodeInto(t *testing.T) {
	type payload struct {
		Total float64 `json:"total"`
	}

	t.Run("fenced json decodes", func(t *testing.T) {
		var p payload
		require.NoError(t, DecodeInto("```json\n{\"total\": 11.0}\n```", &p))
		assert.Equal(t, 11.0, p.Total)
	})

	t.Run("json wrapped in prose decodes", func(t *testing.T) {
		var p payload
		require.NoError(t, DecodeInto(`Sure! {"total": 11.0} Hope that helps.`, &p))
		assert.Equal(t, 11.0, p.Total)
	})

	t.Run("non-json fails", func(t *testing.T) {
		var p payload
		assert.Error(t, DecodeInto("the total is eleven dollars", &p))
	})
}
