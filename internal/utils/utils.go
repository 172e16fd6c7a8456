package utils

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// PreviewContent collapses whitespace and keeps the first n runes of content.
func PreviewContent(content string, n int) string {
	text := strings.TrimSpace(whitespace.ReplaceAllString(content, " "))

	runes := []rune(text)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return text
}

// ToJSON converts data to indented JSON
func ToJSON(data interface{}) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// FormatDate formats a date as YYYY-MM-DD in UTC
func FormatDate(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
