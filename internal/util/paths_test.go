package util

import (
	"testing"
)

func TestChapterPath(t *testing.T) {
	tests := []struct {
		bookID string
		number int
		want   string
	}{
		{"book-1", 1, "book-1/chapter-01.txt"},
		{"book-1", 12, "book-1/chapter-12.txt"},
		{"book-1", 104, "book-1/chapter-104.txt"},
	}
	for _, tt := range tests {
		if got := ChapterPath(tt.bookID, tt.number); got != tt.want {
			t.Errorf("ChapterPath(%q, %d) = %q, want %q", tt.bookID, tt.number, got, tt.want)
		}
	}

	if got := ManifestPath("book-1"); got != "book-1/manifest.json" {
		t.Errorf("ManifestPath() = %q", got)
	}
}

func TestParseChapterFileName(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"chapter-01.txt", 1, true},
		{"book-1/chapter-07.txt", 7, true},
		{"chapter-104.txt", 104, true},
		{"manifest.json", 0, false},
		{"chapter-01.txt.bak", 0, false},
		{"chapter-xx.txt", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseChapterFileName(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseChapterFileName(%q) = %d, %v, want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}
