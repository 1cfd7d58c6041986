package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// maxEntrySize caps the decompressed size of a single archive entry.
const maxEntrySize int64 = 256 * 1024 * 1024

// readZipFile reads a whole entry, refusing unsafe names and anything that
// decompresses past maxEntrySize.
func readZipFile(f *zip.File) ([]byte, error) {
	return readZipFileWithLimit(f, maxEntrySize)
}

func readZipFileWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epub: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("epub: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// The declared size can lie; read one byte past the limit to notice.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("epub: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("epub: zip entry %s exceeds %d bytes", f.Name, limit)
	}
	return data, nil
}

// resolveRelativePath resolves href against the directory of basePath.
// Both are ZIP-internal, slash separated. The fragment is dropped. An empty
// string means href is absolute, external or escapes the archive root.
func resolveRelativePath(basePath, href string) string {
	href = hrefWithoutFragment(strings.TrimSpace(href))
	if href == "" || strings.HasPrefix(href, "/") || strings.Contains(href, "://") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	resolved := path.Clean(path.Join(path.Dir(basePath), href))
	if !isSafePath(resolved) {
		return ""
	}
	return resolved
}

func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

// isSafePath reports whether p stays inside the archive root
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// decodeXML unmarshals package-level XML (container, OPF, NCX) leniently:
// HTML named entities are accepted, unclosed tags tolerated and non-UTF-8
// declared encodings transcoded.
func decodeXML(data []byte, v any) error {
	d := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel
	return d.Decode(v)
}
