package epub

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Options configures an Extractor
type Options struct {
	Rules
	NamePattern     string // filename strategy pattern
	MinChars        int    // final per-chapter length guard
	LegacyNumbering bool
}

// Result is the outcome of one extraction
type Result struct {
	Strategy  string
	Tier      string
	Documents int
	Scored    []Scored // every candidate, in selection order
	Chapters  []Numbered
	Skipped   []Scored // tier survivors dropped by the length guard
}

// Extractor runs collection, selection, classification and numbering over
// a container.
type Extractor struct {
	opts       Options
	selector   *Selector
	classifier *Classifier
	logger     *zap.Logger
}

// NewExtractor wires the default strategies and tiers from opts
func NewExtractor(opts Options, logger *zap.Logger) (*Extractor, error) {
	strategies, err := DefaultStrategies(opts.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid chapter name pattern: %w", err)
	}
	return &Extractor{
		opts:       opts,
		selector:   NewSelector(logger, strategies...),
		classifier: NewClassifier(opts.Rules, logger),
		logger:     logger,
	}, nil
}

// Extract returns the numbered chapters of c, or ErrNoChapters when nothing
// survives.
func (e *Extractor) Extract(ctx context.Context, c *Container) (*Result, error) {
	docs := Collect(c, e.logger)
	res := &Result{Documents: len(docs)}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy, cands := e.selector.Select(c, docs)
	if len(cands) == 0 {
		return res, fmt.Errorf("%w: no candidate documents", ErrNoChapters)
	}
	res.Strategy = strategy

	res.Scored = e.classifier.Score(cands)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tier, survivors := e.classifier.Filter(res.Scored)
	if len(survivors) == 0 {
		return res, fmt.Errorf("%w: every classification tier was empty", ErrNoChapters)
	}
	res.Tier = tier

	res.Chapters, res.Skipped = Number(survivors, e.opts.MinChars, e.opts.LegacyNumbering)
	for _, s := range res.Skipped {
		e.logger.Info("skipping short chapter",
			zap.String("source", s.Source),
			zap.String("title", SanitizeTitle(s.Candidate.Title)),
		)
	}
	if len(res.Chapters) == 0 {
		return res, fmt.Errorf("%w: every survivor was too short", ErrNoChapters)
	}

	return res, nil
}
