package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// TOCEntry is one node of the table of contents. Entries with children are
// grouping nodes; only childless entries are chapter links.
type TOCEntry struct {
	Title    string
	Href     string // as written in the ToC document
	Path     string // ZIP-internal target, fragment removed; empty if unresolvable
	Children []TOCEntry
}

// IsGroup reports whether the entry only groups other entries
func (e TOCEntry) IsGroup() bool { return len(e.Children) > 0 }

// parseTOC reads the EPUB 3 nav document when there is one, otherwise the
// NCX named by the spine (or the first NCX in the manifest). A missing or
// broken ToC yields an empty tree, never an error.
func (c *Container) parseTOC(spineTocID string) ([]TOCEntry, string) {
	for _, mi := range c.manifest {
		if !mi.Nav {
			continue
		}
		data, err := c.ReadFile(mi.Path)
		if err != nil {
			break
		}
		if toc := parseNavDocument(data, mi.Path); len(toc) > 0 {
			return toc, mi.Path
		}
		break
	}

	ncx, ok := c.manifestItem(spineTocID)
	if !ok {
		for _, mi := range c.manifest {
			if strings.EqualFold(mi.MediaType, "application/x-dtbncx+xml") {
				ncx, ok = mi, true
				break
			}
		}
	}
	if ok {
		if data, err := c.ReadFile(ncx.Path); err == nil {
			if toc, err := parseNCX(data, ncx.Path); err == nil && len(toc) > 0 {
				return toc, ncx.Path
			}
		}
	}

	return []TOCEntry{}, ""
}

// --- NCX (EPUB 2) ---

type ncxDocument struct {
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

func parseNCX(data []byte, ncxPath string) ([]TOCEntry, error) {
	var doc ncxDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, err
	}
	return convertNavPoints(doc.NavMap.NavPoints, ncxPath), nil
}

func convertNavPoints(points []ncxNavPoint, ncxPath string) []TOCEntry {
	if len(points) == 0 {
		return nil
	}
	entries := make([]TOCEntry, 0, len(points))
	for _, np := range points {
		src := strings.TrimSpace(np.Content.Src)
		entries = append(entries, TOCEntry{
			Title:    collapseSpace(np.Label),
			Href:     src,
			Path:     resolveRelativePath(ncxPath, src),
			Children: convertNavPoints(np.Children, ncxPath),
		})
	}
	return entries
}

// --- nav document (EPUB 3) ---

// parseNavDocument returns the entries of the <nav epub:type="toc"> list,
// or of the first <nav> when none is typed.
func parseNavDocument(data []byte, navPath string) []TOCEntry {
	doc, err := html.Parse(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return nil
	}

	var navs []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			navs = append(navs, n)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	if len(navs) == 0 {
		return nil
	}

	nav := navs[0]
	for _, n := range navs {
		if hasEpubType(n, "toc") {
			nav = n
			break
		}
	}

	ol := findFirstElement(nav, "ol")
	if ol == nil {
		return nil
	}
	return parseNavList(ol, navPath)
}

func parseNavList(ol *html.Node, navPath string) []TOCEntry {
	var entries []TOCEntry
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == html.ElementNode && li.Data == "li" {
			entries = append(entries, parseNavItem(li, navPath))
		}
	}
	return entries
}

func parseNavItem(li *html.Node, navPath string) TOCEntry {
	var entry TOCEntry
	for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode {
			continue
		}
		switch ch.Data {
		case "a":
			if entry.Href == "" {
				entry.Href = strings.TrimSpace(attr(ch, "href"))
				entry.Path = resolveRelativePath(navPath, entry.Href)
				entry.Title = collapseSpace(textContent(ch))
			}
		case "span":
			if entry.Title == "" {
				entry.Title = collapseSpace(textContent(ch))
			}
		case "ol":
			entry.Children = append(entry.Children, parseNavList(ch, navPath)...)
		}
	}
	return entry
}

func hasEpubType(n *html.Node, typ string) bool {
	for _, t := range strings.Fields(attr(n, "epub:type")) {
		if t == typ {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirstElement(n *html.Node, tag string) *html.Node {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.Data == tag {
			return ch
		}
		if found := findFirstElement(ch, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		sb.WriteString(textContent(ch))
	}
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
