package book

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JimCorrell/ScribeStack/internal/storage"
	"github.com/JimCorrell/ScribeStack/internal/util"
	"github.com/JimCorrell/ScribeStack/pkg/types"
)

// Repository handles chapter artifact persistence
type Repository interface {
	// SaveChapter writes the chapter's text artifact and records its path
	SaveChapter(ctx context.Context, chapter *types.Chapter) error

	// GetChapterText retrieves a chapter's text artifact
	GetChapterText(ctx context.Context, bookID string, number int) (string, error)

	// ListChapterNumbers returns the numbers of stored chapter artifacts, ascending
	ListChapterNumbers(ctx context.Context, bookID string) ([]int, error)

	// ClearChapters removes every chapter artifact of a book
	ClearChapters(ctx context.Context, bookID string) (int, error)

	// SaveManifest stores the manifest of an extraction run
	SaveManifest(ctx context.Context, manifest *types.Manifest) error

	// GetManifest retrieves the latest manifest for a book
	GetManifest(ctx context.Context, bookID string) (*types.Manifest, error)
}

// StorageRepository implements Repository using a storage adapter
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new chapter repository
func NewRepository(storageAdapter storage.Adapter) Repository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

// SaveChapter stores the chapter text as plain UTF-8 with no frontmatter
func (r *StorageRepository) SaveChapter(ctx context.Context, chapter *types.Chapter) error {
	if chapter.BookID == "" {
		return fmt.Errorf("chapter %d has no book id", chapter.Number)
	}
	if chapter.Number < 1 {
		return fmt.Errorf("invalid chapter number: %d", chapter.Number)
	}

	path := util.ChapterPath(chapter.BookID, chapter.Number)
	if err := r.storage.Put(ctx, path, strings.NewReader(chapter.Text)); err != nil {
		return fmt.Errorf("failed to save chapter %d: %w", chapter.Number, err)
	}
	chapter.Path = path
	return nil
}

// GetChapterText retrieves a chapter's text artifact
func (r *StorageRepository) GetChapterText(ctx context.Context, bookID string, number int) (string, error) {
	reader, err := r.storage.Get(ctx, util.ChapterPath(bookID, number))
	if err != nil {
		return "", fmt.Errorf("failed to get chapter %d: %w", number, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read chapter %d: %w", number, err)
	}
	return string(data), nil
}

// ListChapterNumbers returns the numbers of stored chapter artifacts
func (r *StorageRepository) ListChapterNumbers(ctx context.Context, bookID string) ([]int, error) {
	paths, err := r.storage.List(ctx, util.BookPrefix(bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	numbers := []int{}
	for _, p := range paths {
		if n, ok := util.ParseChapterFileName(p); ok && p == util.ChapterPath(bookID, n) {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// ClearChapters deletes every chapter artifact of a book and returns how
// many were removed. The manifest is left in place.
func (r *StorageRepository) ClearChapters(ctx context.Context, bookID string) (int, error) {
	numbers, err := r.ListChapterNumbers(ctx, bookID)
	if err != nil {
		return 0, err
	}
	for i, n := range numbers {
		if err := r.storage.Delete(ctx, util.ChapterPath(bookID, n)); err != nil {
			return i, fmt.Errorf("failed to delete chapter %d: %w", n, err)
		}
	}
	return len(numbers), nil
}

// SaveManifest stores the manifest of an extraction run
func (r *StorageRepository) SaveManifest(ctx context.Context, manifest *types.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := util.ManifestPath(manifest.BookID)
	return r.storage.Put(ctx, path, bytes.NewReader(data))
}

// GetManifest retrieves the latest manifest for a book
func (r *StorageRepository) GetManifest(ctx context.Context, bookID string) (*types.Manifest, error) {
	reader, err := r.storage.Get(ctx, util.ManifestPath(bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	defer reader.Close()

	var manifest types.Manifest
	if err := json.NewDecoder(reader).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return &manifest, nil
}
