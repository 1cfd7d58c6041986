// Package htmltext renders XHTML chapter markup as plain text.
package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Convert returns the text of markup with script and style content removed,
// one text run per line, every line trimmed and blank lines dropped.
// Markup the HTML parser rejects is stripped of tags instead; Convert never
// fails.
func Convert(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return stripTags(markup)
	}

	doc.Find("script, style").Remove()

	var lines []string
	for _, n := range doc.Nodes {
		lines = appendText(lines, n)
	}
	return strings.Join(lines, "\n")
}

// appendText walks n depth-first and appends the trimmed, non-empty lines
// of every text node.
func appendText(lines []string, n *html.Node) []string {
	if n.Type == html.TextNode {
		for _, line := range strings.Split(n.Data, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		return lines
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lines = appendText(lines, c)
	}
	return lines
}

// stripTags is the coarse fallback: drop anything tag-shaped and collapse
// whitespace runs to a single space.
func stripTags(markup string) string {
	text := tagPattern.ReplaceAllString(markup, "")
	return whitespacePattern.ReplaceAllString(text, " ")
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}
