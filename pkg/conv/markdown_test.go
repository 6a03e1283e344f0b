package conv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text",
			input:    "Hello world",
			expected: "Hello world\n",
		},
		{
			name:     "bold text",
			input:    "**bold**",
			expected: "<strong>bold</strong>\n",
		},
		{
			name:     "italic text",
			input:    "*italic*",
			expected: "<em>italic</em>\n",
		},



		{
			name:     "strikethrough",
			input:    "~~strikethrough~~",
			expected: "<del>strikethrough</del>\n",
		},
		{
			name:     "inline code",
			input:    "`code`",
			expected: "<code>code</code>\n",
		},
		{
			name:     "code block",
			input:    "```\ncode block\n```",
			expected: "<pre><code>code block\n</code></pre>\n",
		},
		{
			name:     "code block with language",
			input:    "```go\nfunc main() {}\n```",
			expected: "<pre><code class=\"language-go\">func main() {}\n</code></pre>\n",
		},
		{
			name:     "blockquote",
			input:    "> quote",
			expected: "<blockquote>\nquote\n</blockquote>\n",
		},
		{
			name:     "link",
			input:    "[link](https://example.com)",
			expected: "<a href=\"https://example.com\">link</a>\n",
		},
		{
			name:     "header tags stripped",
			input:    "# Info",
			expected: "Info\n",
		},
		{
			name:     "script tags sanitized",
			input:    "<script>alert('xss')</script>",
			expected: "\n",
		},
		{
			name:     "triage report line",
			input:    "**Most likely:** Migraine (62%)",
			expected: "<strong>Most likely:</strong> Migraine (62%)\n",
		},
		{
			name:     "mixed formatting",
			input:    "**Bold** and *italic* with `code`",
			expected: "<strong>Bold</strong> and <em>italic</em> with <code>code</code>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("MarkdownToTelegramHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitMarkdown(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, SplitMarkdown("   ", 10))
	})

	t.Run("fits", func(t *testing.T) {
		assert.Equal(t, []string{"short"}, SplitMarkdown("short", 100))
	})

	t.Run("splits on paragraph", func(t *testing.T) {
		md := strings.Repeat("a", 8) + "\n\n" + strings.Repeat("b", 8)
		got := SplitMarkdown(md, 12)
		assert.Equal(t, []string{strings.Repeat("a", 8), strings.Repeat("b", 8)}, got)
	})

	t.Run("hard cut without newlines", func(t *testing.T) {
		got := SplitMarkdown(strings.Repeat("x", 25), 10)
		assert.Len(t, got, 3)
		for _, p := range got {
			assert.LessOrEqual(t, len(p), 10)
		}
		assert.Equal(t, strings.Repeat("x", 25), strings.Join(got, ""))
	})
}
