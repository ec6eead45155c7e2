package telegram

import (
	"fmt"

	"github.com/go-telegram/bot"
)

// FormatInputf renders a MarkdownV2 template, escaping every argument
// so user-supplied values can't break out of the markup
func FormatInputf(template string, args ...string) string {
	escaped := make([]any, 0, len(args))
	for _, arg := range args {
		escaped = append(escaped, bot.EscapeMarkdown(arg))
	}
	return fmt.Sprintf(template, escaped...)
}
