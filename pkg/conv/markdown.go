package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// TelegramMessageLimit is the maximum text length of one Telegram message.
const TelegramMessageLimit = 4096

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToTelegramHTML renders md and strips every tag Telegram rejects.
func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

// SplitMarkdown cuts md into parts no longer than limit runes, preferring
// paragraph then line boundaries. Each part is rendered separately.
func SplitMarkdown(md string, limit int) []string {
	md = strings.TrimSpace(md)
	if md == "" {
		return nil
	}
	if limit <= 0 {
		limit = TelegramMessageLimit
	}

	var parts []string
	for len([]rune(md)) > limit {
		runes := []rune(md)
		head := string(runes[:limit])

		cut := strings.LastIndex(head, "\n\n")
		if cut <= 0 {
			cut = strings.LastIndex(head, "\n")
		}
		if cut <= 0 {
			cut = len(head)
		}

		parts = append(parts, strings.TrimSpace(md[:cut]))
		md = strings.TrimSpace(md[cut:])
	}
	if md != "" {
		parts = append(parts, md)
	}
	return parts
}
