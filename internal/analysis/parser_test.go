package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const completeReply = "Rating: 8\nSuggestions:\n- improve summary\nExample of rewritten section (10/10):\nSenior engineer with..."

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ParsedReply
		missing []string
	}{
		{
			name: "worked example",
			raw:  completeReply,
			want: ParsedReply{
				Rating:      "8",
				Suggestions: "- improve summary",
				Example:     "Senior engineer with...",
			},
		},
		{
			name: "missing example section",
			raw:  "Rating: 7\nSuggestions:\n- add metrics",
			want: ParsedReply{
				Rating:      "7",
				Suggestions: "- add metrics",
			},
			missing: []string{"example"},
		},
		{
			name: "case insensitive with dash separators",
			raw:  "RATING - 10\nsuggestions - tighten bullets\nexample of rewritten section: Led a team of five.",
			want: ParsedReply{
				Rating:      "10",
				Suggestions: "tighten bullets",
				Example:     "Led a team of five.",
			},
		},
		{
			name: "rating keeps at most two digits",
			raw:  "Rating: 100\nSuggestions: none\nExample of rewritten section: text",
			want: ParsedReply{
				Rating:      "10",
				Suggestions: "none",
				Example:     "text",
			},
		},
		{
			name: "first rating wins",
			raw:  "Rating: 6\nRating: 9\nSuggestions: x\nExample of rewritten section: y",
			want: ParsedReply{
				Rating:      "6",
				Suggestions: "x",
				Example:     "y",
			},
		},
		{
			name: "empty suggestions body counts as missing",
			raw:  "Rating: 5\nSuggestions:\nExample of rewritten section (10/10):\nBetter summary",
			want: ParsedReply{
				Rating:  "5",
				Example: "Better summary",
			},
			missing: []string{"suggestions"},
		},
		{
			name:    "no sections",
			raw:     "I cannot help with that.",
			want:    ParsedReply{},
			missing: []string{"rating", "suggestions", "example"},
		},
		{
			name:    "empty reply",
			raw:     "",
			want:    ParsedReply{},
			missing: []string{"rating", "suggestions", "example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.missing, got.Missing())
			assert.Equal(t, len(tt.missing) == 0, got.Complete())
		})
	}
}

func TestParseReplyIdempotent(t *testing.T) {
	replies := []string{
		completeReply,
		"Rating: 3\nSuggestions:\nmultiline\n\nbody\nExample of rewritten section:\nA\nB\n",
		"nothing useful",
	}

	for _, raw := range replies {
		assert.Equal(t, ParseReply(raw), ParseReply(raw))
	}
}

func TestParseReplyMultilineSections(t *testing.T) {
	raw := "Rating: 9\n\nSuggestions:\n1. Quantify impact.\n2. Shorten summary.\n\nExample of rewritten section (10/10):\nSummary\nBuilt systems serving 10M users.\n"

	got := ParseReply(raw)

	assert.Equal(t, "9", got.Rating)
	assert.Equal(t, "1. Quantify impact.\n2. Shorten summary.", got.Suggestions)
	assert.Equal(t, "Summary\nBuilt systems serving 10M users.", got.Example)
}
