package ai

import (
	"strings"
	"time"
)

// BuildUserPrompt renders the per-request prompt: an optional reference
// line followed by the literal "Input: <text>\nJSON:" pair.
func BuildUserPrompt(text string, now time.Time) string {
	var b strings.Builder

	if !now.IsZero() {
		b.WriteString("Now: ")
		b.WriteString(now.Format("2006-01-02T15:04:05-07:00 (Monday)"))
		b.WriteString("\n")
	}

	b.WriteString("Input: ")
	b.WriteString(text)
	b.WriteString("\nJSON:")

	return b.String()
}
