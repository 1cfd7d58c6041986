package types

import "time"

// Chapter is one emitted chapter artifact
type Chapter struct {
	BookID     string `json:"book_id"`
	Number     int    `json:"number"`      // dense, 1-based
	Title      string `json:"title"`       // sanitized
	SourceName string `json:"source_name"` // manifest href the text came from
	Words      int    `json:"words"`
	Path       string `json:"path,omitempty"` // storage path, set after emission
	Text       string `json:"-"`
}

// Manifest records the outcome of one extraction run for a book
type Manifest struct {
	BookID      string            `json:"book_id"`
	RunID       string            `json:"run_id"`
	Source      string            `json:"source"`
	Strategy    string            `json:"strategy"` // "filename", "toc" or "all"
	Tier        string            `json:"tier"`     // winning classification tier
	Skipped     []SkippedArtifact `json:"skipped,omitempty"`
	Chapters    []*Chapter        `json:"chapters"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SkippedArtifact is a tier survivor dropped by the final length guard
type SkippedArtifact struct {
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	Chars      int    `json:"chars"`
}
