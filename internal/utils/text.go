// internal/utils/text.go
package utils

import (
	"math"
	"regexp"
	"strings"
)

const (
	WordsPerMinute = 200
	MaxSlugLength  = 200
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// ComputeWordCount counts whitespace-separated words. Blank input is 0.
func ComputeWordCount(text string) int {
	return len(strings.Fields(strings.TrimSpace(text)))
}

// ComputeReadingTime returns minutes at WordsPerMinute, never less than 1.
func ComputeReadingTime(text string) int {
	minutes := int(math.Ceil(float64(ComputeWordCount(text)) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// GenerateSlug turns a title into a URL-safe slug of at most MaxSlugLength
// characters. Feeding a slug back in returns it unchanged.
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		// only [a-z0-9-] is left, so byte truncation is safe
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}

	return slug
}
