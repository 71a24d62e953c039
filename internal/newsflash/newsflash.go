// Package newsflash rewrites a raw post into its headline form.
package newsflash

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMaxLength = 280

type Options struct {
	// MaxLength caps the output in runes. Zero means DefaultMaxLength.
	MaxLength int
}

// Generator produces the newsflash for a post. Implementations may fail;
// callers fall back to Fallback.
type Generator interface {
	Generate(ctx context.Context, rawText, authorName string, opts Options) (string, error)
}

// Fallback is the deterministic generator: it never fails and the same
// input always yields the same output.
type Fallback struct{}

func (Fallback) Generate(_ context.Context, rawText, authorName string, opts Options) (string, error) {
	return Headline(rawText, authorName, opts), nil
}

// Headline formats "BREAKING: <author> reports: <text>", with the text
// whitespace-collapsed, its first letter capitalised, and the whole line
// truncated with an ellipsis to opts.MaxLength runes.
func Headline(rawText, authorName string, opts Options) string {
	limit := opts.MaxLength
	if limit <= 0 {
		limit = DefaultMaxLength
	}

	author := strings.TrimSpace(authorName)
	if author == "" {
		author = "Someone"
	}
	text := capitalise(strings.Join(strings.Fields(rawText), " "))

	line := "BREAKING: " + author + " reports: " + text
	if utf8.RuneCountInString(line) <= limit {
		return line
	}
	runes := []rune(line)
	if limit == 1 {
		return "…"
	}
	return strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace) + "…"
}

func capitalise(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
