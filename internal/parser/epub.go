package parser

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/JimCorrell/ScribeStack/internal/epub"
	"github.com/JimCorrell/ScribeStack/pkg/types"
	"go.uber.org/zap"
)

// EPUBParser extracts chapters from EPUB 2 and EPUB 3 books
type EPUBParser struct {
	extractor *epub.Extractor
	logger    *zap.Logger
}

// Extraction is the full outcome of parsing one book, including what was
// considered and dropped along the way.
type Extraction struct {
	Version   string
	TOCSource string
	Result    *epub.Result
	Chapters  []*types.Chapter
	Skipped   []types.SkippedArtifact
}

// NewEPUBParser creates a new ePUB parser from the extraction settings
func NewEPUBParser(cfg types.ExtractionConfig, logger *zap.Logger) (*EPUBParser, error) {
	ex, err := epub.NewExtractor(OptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	return &EPUBParser{extractor: ex, logger: logger}, nil
}

// OptionsFromConfig maps the extraction config onto extractor options
func OptionsFromConfig(cfg types.ExtractionConfig) epub.Options {
	return epub.Options{
		Rules: epub.Rules{
			TitleKeywords: cfg.TitleKeywords,
			ContentHints:  cfg.ContentHints,
			SampleChars:   cfg.SampleChars,
			MinWords:      cfg.MinWords,
			FallbackLimit: cfg.FallbackLimit,
		},
		NamePattern:     cfg.ChapterNamePattern,
		MinChars:        cfg.MinChars,
		LegacyNumbering: cfg.LegacyNumbering,
	}
}

// Parse extracts the numbered chapters of an EPUB
func (p *EPUBParser) Parse(ctx context.Context, data []byte) ([]*types.Chapter, error) {
	ext, err := p.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	return ext.Chapters, nil
}

// Extract parses an EPUB and returns the chapters with the extraction
// details. On epub.ErrNoChapters the returned Extraction is still populated
// with whatever was collected and scored.
func (p *EPUBParser) Extract(ctx context.Context, data []byte) (*Extraction, error) {
	c, err := epub.NewReader(data)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ext := &Extraction{Version: c.Version(), TOCSource: c.TOCSource()}

	res, err := p.extractor.Extract(ctx, c)
	if res == nil {
		return nil, err
	}
	ext.Result = res

	for _, n := range res.Chapters {
		ext.Chapters = append(ext.Chapters, &types.Chapter{
			Number:     n.Number,
			Title:      n.Title,
			SourceName: n.Source,
			Words:      n.Verdict.Words,
			Text:       n.Text,
		})
	}
	for _, s := range res.Skipped {
		ext.Skipped = append(ext.Skipped, types.SkippedArtifact{
			Title:      epub.SanitizeTitle(s.Candidate.Title),
			SourceName: s.Source,
			Chars:      utf8.RuneCountInString(strings.TrimSpace(s.Text)),
		})
	}

	if err != nil {
		return ext, err
	}

	p.logger.Debug("parsed epub",
		zap.String("version", ext.Version),
		zap.String("strategy", res.Strategy),
		zap.String("tier", res.Tier),
		zap.Int("chapters", len(ext.Chapters)),
	)
	return ext, nil
}

// SupportedFormats returns the formats this parser supports
func (p *EPUBParser) SupportedFormats() []string {
	return []string{"epub"}
}
