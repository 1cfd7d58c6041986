package util

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
)

// ManifestFile is the per-book manifest artifact name
const ManifestFile = "manifest.json"

var chapterFilePattern = regexp.MustCompile(`^chapter-(\d+)\.txt$`)

// ChapterFileName returns the artifact name for a chapter number
func ChapterFileName(number int) string {
	return fmt.Sprintf("chapter-%02d.txt", number)
}

// ChapterPath returns the storage path for a chapter's text artifact
func ChapterPath(bookID string, number int) string {
	return path.Join(bookID, ChapterFileName(number))
}

// ManifestPath returns the storage path for a book's manifest
func ManifestPath(bookID string) string {
	return path.Join(bookID, ManifestFile)
}

// BookPrefix returns the listing prefix for everything stored for a book
func BookPrefix(bookID string) string {
	return bookID + "/"
}

// ParseChapterFileName extracts the chapter number from an artifact name
func ParseChapterFileName(name string) (int, bool) {
	m := chapterFilePattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
