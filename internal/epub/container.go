package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const containerPath = "META-INF/container.xml"

type containerXML struct {
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Version  string `xml:"version,attr"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc string `xml:"toc,attr"`
	} `xml:"spine"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// ManifestItem is one manifest entry with its href resolved to a ZIP path
type ManifestItem struct {
	ID        string
	Href      string // as declared, relative to the package document
	Path      string // ZIP-internal path
	MediaType string
	Nav       bool // EPUB 3 navigation document
}

// IsDocument reports whether the item is an XHTML/HTML content document
func (m ManifestItem) IsDocument() bool {
	switch strings.ToLower(strings.TrimSpace(m.MediaType)) {
	case "application/xhtml+xml", "text/html":
		return !m.Nav
	}
	return false
}

// Container is a parsed EPUB package: the archive index, the manifest in
// declaration order and the table of contents.
type Container struct {
	zip      *zip.Reader
	byName   map[string]*zip.File
	byLower  map[string]*zip.File
	version  string
	opfPath  string
	manifest []ManifestItem
	toc      []TOCEntry
	tocPath  string
	closer   io.Closer
}

// Open opens the EPUB at path. Close releases the file.
func Open(filePath string) (*Container, error) {
	zrc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidContainer, filePath, err)
	}

	c, err := newContainer(&zrc.Reader)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	c.closer = zrc
	return c, nil
}

// NewReader parses an EPUB held in memory
func NewReader(data []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open zip: %v", ErrInvalidContainer, err)
	}
	return newContainer(zr)
}

func newContainer(zr *zip.Reader) (*Container, error) {
	c := &Container{
		zip:     zr,
		byName:  make(map[string]*zip.File, len(zr.File)),
		byLower: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, ok := c.byName[f.Name]; !ok {
			c.byName[f.Name] = f
		}
		lower := strings.ToLower(f.Name)
		if _, ok := c.byLower[lower]; !ok {
			c.byLower[lower] = f
		}
	}

	opfPath, err := c.findPackageDocument()
	if err != nil {
		return nil, err
	}
	c.opfPath = opfPath

	data, err := c.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read package document %s: %v", ErrInvalidContainer, opfPath, err)
	}

	var pkg opfPackage
	if err := decodeXML(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: parse package document: %v", ErrInvalidContainer, err)
	}
	c.version = pkg.Version

	for _, item := range pkg.Manifest.Items {
		href := strings.TrimSpace(item.Href)
		mi := ManifestItem{
			ID:        item.ID,
			Href:      href,
			Path:      resolveRelativePath(opfPath, href),
			MediaType: item.MediaType,
		}
		for _, prop := range strings.Fields(item.Properties) {
			if prop == "nav" {
				mi.Nav = true
			}
		}
		c.manifest = append(c.manifest, mi)
	}

	c.toc, c.tocPath = c.parseTOC(pkg.Spine.Toc)
	return c, nil
}

// findPackageDocument reads container.xml, falling back to the first .opf
// entry in the archive when it is missing or empty.
func (c *Container) findPackageDocument() (string, error) {
	if f := c.findFile(containerPath); f != nil {
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("%w: read container.xml: %v", ErrInvalidContainer, err)
		}
		var cx containerXML
		if err := decodeXML(data, &cx); err != nil {
			return "", fmt.Errorf("%w: parse container.xml: %v", ErrInvalidContainer, err)
		}
		var fallback string
		for _, rf := range cx.RootFiles {
			full := strings.TrimSpace(rf.FullPath)
			if full == "" {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
				return full, nil
			}
			if fallback == "" {
				fallback = full
			}
		}
		if fallback != "" {
			return fallback, nil
		}
	}

	for _, f := range c.zip.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("%w: no package document found", ErrInvalidContainer)
}

// Close releases the underlying file when the container came from Open
func (c *Container) Close() error {
	if c.closer != nil {
		err := c.closer.Close()
		c.closer = nil
		return err
	}
	return nil
}

// Version is the package version attribute ("2.0", "3.0", ...)
func (c *Container) Version() string { return c.version }

// Manifest returns the manifest items in declaration order
func (c *Container) Manifest() []ManifestItem { return c.manifest }

// TOC returns the table-of-contents tree, empty when none was found
func (c *Container) TOC() []TOCEntry { return c.toc }

// TOCSource is the archive path of the document the ToC was read from
func (c *Container) TOCSource() string { return c.tocPath }

// ReadFile reads an archive entry by ZIP-internal path, falling back to a
// case-insensitive match.
func (c *Container) ReadFile(name string) ([]byte, error) {
	f := c.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readZipFile(f)
}

func (c *Container) findFile(name string) *zip.File {
	if name == "" {
		return nil
	}
	if f, ok := c.byName[name]; ok {
		return f
	}
	return c.byLower[strings.ToLower(name)]
}

// manifestItem looks an item up by id
func (c *Container) manifestItem(id string) (ManifestItem, bool) {
	for _, mi := range c.manifest {
		if mi.ID == id {
			return mi, true
		}
	}
	return ManifestItem{}, false
}
