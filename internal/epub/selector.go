package epub

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Candidate is a document chosen as a possible chapter. Slice order is the
// reading order decided by the strategy that produced it.
type Candidate struct {
	Title  string
	Markup string
	Source string // document name
}

// Strategy produces an ordered candidate list, or nothing when its signal
// is absent from the container.
type Strategy interface {
	Name() string
	Select(c *Container, docs []Document) []Candidate
}

// Strategy names
const (
	StrategyFilename = "filename"
	StrategyTOC      = "toc"
	StrategyAll      = "all"
)

// FilenameStrategy keeps documents whose name matches Pattern, in lexical
// name order.
type FilenameStrategy struct {
	Pattern *regexp.Regexp
}

// NewFilenameStrategy compiles pattern; "(?i)ch\d+" when empty
func NewFilenameStrategy(pattern string) (*FilenameStrategy, error) {
	if pattern == "" {
		pattern = `(?i)ch\d+`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &FilenameStrategy{Pattern: re}, nil
}

func (s *FilenameStrategy) Name() string { return StrategyFilename }

func (s *FilenameStrategy) Select(_ *Container, docs []Document) []Candidate {
	var matched []Document
	for _, d := range docs {
		if s.Pattern.MatchString(strings.ToLower(d.Name)) {
			matched = append(matched, d)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})

	out := make([]Candidate, 0, len(matched))
	for _, d := range matched {
		out = append(out, Candidate{Title: d.Title, Markup: d.Markup, Source: d.Name})
	}
	return out
}

// TOCStrategy walks the table of contents depth-first. Grouping entries are
// descended into, never emitted. Each document is emitted once, at its first
// link; links to documents that were not collected are skipped.
type TOCStrategy struct{}

func (TOCStrategy) Name() string { return StrategyTOC }

func (TOCStrategy) Select(c *Container, docs []Document) []Candidate {
	byPath := make(map[string]Document, len(docs))
	byLower := make(map[string]Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
		byLower[strings.ToLower(d.Path)] = d
	}

	seen := make(map[string]bool)
	var out []Candidate
	var walk func([]TOCEntry)
	walk = func(entries []TOCEntry) {
		for _, e := range entries {
			if e.IsGroup() {
				walk(e.Children)
				continue
			}
			d, ok := byPath[e.Path]
			if !ok {
				d, ok = byLower[strings.ToLower(e.Path)]
			}
			if !ok || e.Path == "" || seen[d.Path] {
				continue
			}
			seen[d.Path] = true

			title := e.Title
			if title == "" {
				title = d.Title
			}
			out = append(out, Candidate{Title: title, Markup: d.Markup, Source: d.Name})
		}
	}
	walk(c.TOC())
	return out
}

// AllDocumentsStrategy returns every collected document in manifest order
type AllDocumentsStrategy struct{}

func (AllDocumentsStrategy) Name() string { return StrategyAll }

func (AllDocumentsStrategy) Select(_ *Container, docs []Document) []Candidate {
	out := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, Candidate{Title: d.Title, Markup: d.Markup, Source: d.Name})
	}
	return out
}

// Selector tries its strategies in order and keeps the first non-empty
// result. Results are never merged.
type Selector struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewSelector builds a selector over strategies, in priority order
func NewSelector(logger *zap.Logger, strategies ...Strategy) *Selector {
	return &Selector{strategies: strategies, logger: logger}
}

// DefaultStrategies returns filename, ToC and all-documents, in that order
func DefaultStrategies(namePattern string) ([]Strategy, error) {
	fs, err := NewFilenameStrategy(namePattern)
	if err != nil {
		return nil, err
	}
	return []Strategy{fs, TOCStrategy{}, AllDocumentsStrategy{}}, nil
}

// Select returns the winning strategy's name and candidates. The name is
// empty when every strategy came back empty.
func (s *Selector) Select(c *Container, docs []Document) (string, []Candidate) {
	for _, st := range s.strategies {
		cands := st.Select(c, docs)
		if len(cands) > 0 {
			s.logger.Info("selected chapter candidates",
				zap.String("strategy", st.Name()),
				zap.Int("candidates", len(cands)),
			)
			return st.Name(), cands
		}
		s.logger.Debug("strategy found nothing", zap.String("strategy", st.Name()))
	}
	return "", nil
}
