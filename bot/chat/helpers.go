package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumberedOptions creates a numbered text menu from options.
// Example output: "1. Secteur formel\n2. Secteur informel\n\nChoisissez une option :"
func FormatNumberedOptions(text string, options []Option) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")

	for i, opt := range options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, opt.Label))
	}
	sb.WriteString("\nChoisissez une option :")
	return sb.String()
}

// MatchNumberToOption converts a number string ("1", "2", ...) to the
// corresponding option value. Returns empty string if no match.
func MatchNumberToOption(text string, options []Option) string {
	text = strings.TrimSpace(text)
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(options) {
		return ""
	}
	return options[num-1].Value
}

// NormalizeInput lowercases and trims raw text for command matching.
func NormalizeInput(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ParseMenuSelection interprets input as a menu selection. Returns the
// 0-based index, or exit=true for "0", or ok=false for anything else.
func ParseMenuSelection(text string, count int) (idx int, exit, ok bool) {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false, false
	}
	if num == 0 {
		return 0, true, true
	}
	if num < 1 || num > count {
		return 0, false, false
	}
	return num - 1, false, true
}
