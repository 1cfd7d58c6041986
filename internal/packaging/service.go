package packaging

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/JimCorrell/ScribeStack/internal/book"
	"github.com/JimCorrell/ScribeStack/internal/util"
	"github.com/JimCorrell/ScribeStack/pkg/types"
)

// Service bundles a book's chapter artifacts into ZIP archives
type Service struct {
	bookRepo book.Repository
	now      func() time.Time
}

// NewService creates a new packaging service
func NewService(bookRepo book.Repository) *Service {
	return &Service{
		bookRepo: bookRepo,
		now:      time.Now,
	}
}

// TOC lists the packaged chapters in number order
type TOC struct {
	BookID     string       `json:"book_id"`
	PackagedAt time.Time    `json:"packaged_at"`
	Chapters   []TOCChapter `json:"chapters"`
}

// TOCChapter represents a chapter in the TOC
type TOCChapter struct {
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	File   string `json:"file"`
	Words  int    `json:"words,omitempty"`
}

// PackageBook creates a ZIP archive holding the book's manifest, a
// toc.json and every stored chapter-NN.txt
func (s *Service) PackageBook(ctx context.Context, bookID string) (io.Reader, error) {
	numbers, err := s.bookRepo.ListChapterNumbers(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("no chapters stored for book %s", bookID)
	}

	// Titles and word counts come from the manifest when there is one
	manifest, err := s.bookRepo.GetManifest(ctx, bookID)
	if err != nil {
		manifest = nil
	}
	byNumber := make(map[int]*types.Chapter)
	if manifest != nil {
		for _, ch := range manifest.Chapters {
			byNumber[ch.Number] = ch
		}
	}

	// Create ZIP in memory
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	toc := &TOC{BookID: bookID, PackagedAt: s.now().UTC()}
	for _, n := range numbers {
		text, err := s.bookRepo.GetChapterText(ctx, bookID, n)
		if err != nil {
			return nil, err
		}
		name := util.ChapterFileName(n)
		if err := s.addFile(zipWriter, name, []byte(text)); err != nil {
			return nil, fmt.Errorf("failed to add chapter %d: %w", n, err)
		}

		entry := TOCChapter{Number: n, File: name}
		if ch, ok := byNumber[n]; ok {
			entry.Title = ch.Title
			entry.Words = ch.Words
		}
		toc.Chapters = append(toc.Chapters, entry)
	}

	if err := s.addJSONFile(zipWriter, "toc.json", toc); err != nil {
		return nil, fmt.Errorf("failed to add toc: %w", err)
	}
	if manifest != nil {
		if err := s.addJSONFile(zipWriter, util.ManifestFile, manifest); err != nil {
			return nil, fmt.Errorf("failed to add manifest: %w", err)
		}
	}

	// Close ZIP writer
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}

// addJSONFile adds a JSON file to the ZIP
func (s *Service) addJSONFile(zipWriter *zip.Writer, path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return s.addFile(zipWriter, path, jsonData)
}

// addFile adds a file to the ZIP
func (s *Service) addFile(zipWriter *zip.Writer, path string, data []byte) error {
	writer, err := zipWriter.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	return nil
}
