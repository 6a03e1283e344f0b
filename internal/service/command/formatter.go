package command

import (
	"fmt"
	"strings"
)

// ResponseFormatter renders command replies as markdown. Telegram converts
// it to HTML; the terminal prints it as is.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return "ℹ️ **" + title + "**\n"
}

func (f *ResponseFormatter) Success(message string) string {
	return "✅ **" + message + "**\n"
}

func (f *ResponseFormatter) Error(command string, err error) string {
	return fmt.Sprintf("❌ **/%s failed**\n\n**Issue**: %v\n", command, err)
}

// Unknown lists the available commands after the rejected name.
func (f *ResponseFormatter) Unknown(name string, known []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Unknown command: /%s\n", name)
	if len(known) > 0 {
		sb.WriteString("\n**Available**: ")
		for i, k := range known {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("`/" + k + "`")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**: `%s`\n", label, value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return "**Usage**: `" + command + "`\n"
}

func (f *ResponseFormatter) Examples(examples []string) string {
	return "**Examples**:\n" + f.List(wrapCode(examples))
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("• " + item + "\n")
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return "_Tip: " + text + "_\n"
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}

func wrapCode(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return out
}
