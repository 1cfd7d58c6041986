package epub

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// UntitledTitle replaces titles that sanitize to nothing
const UntitledTitle = "Untitled"

var chapterPrefix = regexp.MustCompile(`(?i)^chapter\s+\d+[:\s]+`)

// SanitizeTitle strips a leading "Chapter N:" / "Chapter N " prefix and
// surrounding space, normalizing to NFC.
func SanitizeTitle(title string) string {
	title = chapterPrefix.ReplaceAllString(title, "")
	title = norm.NFC.String(strings.TrimSpace(title))
	if title == "" {
		return UntitledTitle
	}
	return title
}

// Numbered is a survivor with its sequence number and sanitized title
type Numbered struct {
	Scored
	Number int
	Title  string
}

// Number assigns 1-based sequence numbers to survivors in order and drops
// any whose trimmed text is shorter than minChars runes.
//
// By default the length guard runs first, so numbers are dense. With legacy
// set, numbers are assigned before the guard and a dropped survivor leaves a
// gap, reproducing output of earlier runs.
func Number(survivors []Scored, minChars int, legacy bool) (kept []Numbered, skipped []Scored) {
	n := 0
	for i, s := range survivors {
		if utf8.RuneCountInString(strings.TrimSpace(s.Text)) < minChars {
			skipped = append(skipped, s)
			continue
		}
		n++
		num := n
		if legacy {
			num = i + 1
		}
		kept = append(kept, Numbered{
			Scored: s,
			Number: num,
			Title:  SanitizeTitle(s.Candidate.Title),
		})
	}
	return kept, skipped
}
