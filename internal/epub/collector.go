package epub

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Document is one content document read from the container
type Document struct {
	Name   string // manifest href, relative to the package document
	Path   string // ZIP-internal path
	Title  string // manifest href, or "Chapter N" when it has none
	Markup string
}

// Collect reads every XHTML/HTML manifest item in manifest order. The title
// is the document name, else "Chapter N"; ToC labels are applied only by
// TOCStrategy. Items that cannot be read or are not UTF-8 are skipped.
func Collect(c *Container, logger *zap.Logger) []Document {
	var docs []Document
	for _, mi := range c.Manifest() {
		if !mi.IsDocument() {
			continue
		}

		markup, err := readDocument(c, mi.Path)
		if err != nil {
			logger.Warn("skipping unreadable document",
				zap.String("name", mi.Href),
				zap.Error(err),
			)
			continue
		}

		title := mi.Href
		if title == "" {
			title = fmt.Sprintf("Chapter %d", len(docs)+1)
		}

		docs = append(docs, Document{
			Name:   mi.Href,
			Path:   mi.Path,
			Title:  title,
			Markup: markup,
		})
	}

	logger.Debug("collected documents", zap.Int("count", len(docs)))
	return docs
}

// readDocument reads an entry as UTF-8 text with any BOM removed
func readDocument(c *Container, name string) (string, error) {
	data, err := c.ReadFile(name)
	if err != nil {
		return "", err
	}
	data = stripBOM(data)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotUTF8, name)
	}
	return string(data), nil
}
