package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// fixtureDoc is one content document, href relative to OEBPS/
type fixtureDoc struct {
	href string
	body string
}

// fixture describes a synthetic EPUB. Documents are declared in the
// manifest in slice order.
type fixture struct {
	version string
	docs    []fixtureDoc
	ncx     string            // navMap inner XML, no NCX when empty
	nav     string            // nav <ol> inner HTML, no nav document when empty
	items   []string          // extra raw manifest <item> elements
	files   map[string]string // extra archive entries by ZIP path
	omit    []string          // ZIP paths to leave out of the archive
}

func (f fixture) archive() map[string]string {
	version := f.version
	if version == "" {
		version = "2.0"
	}

	var manifest strings.Builder
	for i, d := range f.docs {
		fmt.Fprintf(&manifest, `<item id="doc%d" href="%s" media-type="application/xhtml+xml"/>`+"\n", i, d.href)
	}
	for _, item := range f.items {
		manifest.WriteString(item + "\n")
	}

	spineToc := ""
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
	}
	if f.ncx != "" {
		manifest.WriteString(`<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
		spineToc = ` toc="ncx"`
		files["OEBPS/toc.ncx"] = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>` + f.ncx + `</navMap></ncx>`
	}
	if f.nav != "" {
		manifest.WriteString(`<item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
		files["OEBPS/nav.xhtml"] = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops"><body>
<nav epub:type="toc"><ol>` + f.nav + `</ol></nav></body></html>`
	}

	files["OEBPS/content.opf"] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="%s" unique-identifier="id">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Fixture</dc:title></metadata>
<manifest>
%s</manifest>
<spine%s></spine>
</package>`, version, manifest.String(), spineToc)

	for _, d := range f.docs {
		files["OEBPS/"+d.href] = d.body
	}
	for name, content := range f.files {
		files[name] = content
	}
	for _, name := range f.omit {
		delete(files, name)
	}
	return files
}

// bytes builds the archive, mimetype first and the rest in sorted order
func (f fixture) bytes(t *testing.T) []byte {
	t.Helper()
	return buildTestZip(t, f.archive())
}

// container builds the archive and parses it
func (f fixture) container(t *testing.T) *Container {
	t.Helper()
	c, err := NewReader(f.bytes(t))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	return c
}

func buildTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files["mimetype"]; ok {
		names = append([]string{"mimetype"}, names...)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestZip: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			t.Fatalf("buildTestZip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZip: close writer: %v", err)
	}
	return buf.Bytes()
}

func writeTestFile(t *testing.T, data []byte) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(fp, data, 0644); err != nil {
		t.Fatalf("write epub: %v", err)
	}
	return fp
}

// page wraps paragraphs in a minimal XHTML document
func page(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><html xmlns="http://www.w3.org/1999/xhtml"><body>`)
	for _, p := range paragraphs {
		sb.WriteString("<p>" + p + "</p>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// prose returns n words of filler text that trips no keyword
func prose(n int) string {
	return strings.TrimSpace(strings.Repeat("river ", n))
}

// navPoint renders an NCX navPoint with optional children
func navPoint(label, src string, children ...string) string {
	return `<navPoint><navLabel><text>` + label + `</text></navLabel><content src="` + src + `"/>` +
		strings.Join(children, "") + `</navPoint>`
}

// navLink renders a nav <li> leaf
func navLink(label, href string) string {
	return `<li><a href="` + href + `">` + label + `</a></li>`
}

// navGroup renders a nav <li> with a span heading and nested list
func navGroup(label string, children ...string) string {
	return `<li><span>` + label + `</span><ol>` + strings.Join(children, "") + `</ol></li>`
}

func candidateSources(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Source)
	}
	return out
}
