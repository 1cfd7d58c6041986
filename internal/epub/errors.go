package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrInvalidContainer indicates the file could not be opened as an EPUB
	// at all (not a ZIP archive, no package document, unparsable package).
	ErrInvalidContainer = errors.New("epub: invalid container")

	// ErrNoChapters indicates no selection strategy produced candidates or
	// every fallback tier came back empty.
	ErrNoChapters = errors.New("epub: no chapters found")

	// ErrFileNotFound indicates a referenced entry is missing from the archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrNotUTF8 indicates a document entry is not valid UTF-8 text.
	ErrNotUTF8 = errors.New("epub: document is not valid UTF-8")
)
