package epub

import (
	"sort"
	"strings"

	"github.com/JimCorrell/ScribeStack/internal/htmltext"
	"go.uber.org/zap"
)

// Rules are the front/back-matter heuristics. Keywords are lowercase.
type Rules struct {
	TitleKeywords []string
	ContentHints  []string
	SampleChars   int // opening runes of text searched for ContentHints
	MinWords      int // primary tier word minimum
	FallbackLimit int // cap for the longest-document tiers
}

// Verdict is the content/non-content decision for one candidate
type Verdict struct {
	Content bool
	Words   int
	Reason  string // matched keyword, empty for content
}

// Scored is a candidate with its rendered text and verdict
type Scored struct {
	Candidate
	Text    string
	Verdict Verdict
}

// Tier is one fallback level: keep what passes Keep, optionally rank, then
// cap at Limit (0 means no cap).
type Tier struct {
	Name  string
	Keep  func(Scored) bool
	Rank  bool // order by descending word count
	Limit int
}

// Tier names
const (
	TierPrimary        = "primary"
	TierContentLongest = "content-longest"
	TierLongest        = "longest"
)

// DefaultTiers is the three-level policy: long content documents in reading
// order, then the longest content documents, then the longest of anything.
func DefaultTiers(r Rules) []Tier {
	return []Tier{
		{
			Name: TierPrimary,
			Keep: func(s Scored) bool { return s.Verdict.Content && s.Verdict.Words >= r.MinWords },
		},
		{
			Name:  TierContentLongest,
			Keep:  func(s Scored) bool { return s.Verdict.Content },
			Rank:  true,
			Limit: r.FallbackLimit,
		},
		{
			Name:  TierLongest,
			Keep:  func(Scored) bool { return true },
			Rank:  true,
			Limit: r.FallbackLimit,
		},
	}
}

// Classifier scores candidates and applies the tier policy
type Classifier struct {
	rules   Rules
	tiers   []Tier
	convert func(string) string
	logger  *zap.Logger
}

// NewClassifier uses DefaultTiers and htmltext.Convert
func NewClassifier(rules Rules, logger *zap.Logger) *Classifier {
	return &Classifier{
		rules:   rules,
		tiers:   DefaultTiers(rules),
		convert: htmltext.Convert,
		logger:  logger,
	}
}

// WithTiers replaces the tier policy
func (c *Classifier) WithTiers(tiers []Tier) *Classifier {
	c.tiers = tiers
	return c
}

// Classify decides one candidate from its title and rendered text
func (c *Classifier) Classify(title, text string) Verdict {
	v := Verdict{Content: true, Words: htmltext.WordCount(text)}

	t := strings.ToLower(strings.TrimSpace(title))
	for _, kw := range c.rules.TitleKeywords {
		if t == kw || strings.Contains(t, kw) {
			v.Content = false
			v.Reason = "title:" + kw
			return v
		}
	}

	sample := strings.ToLower(headRunes(text, c.rules.SampleChars))
	for _, hint := range c.rules.ContentHints {
		if strings.Contains(sample, hint) {
			v.Content = false
			v.Reason = "content:" + hint
			return v
		}
	}
	return v
}

// Score renders and classifies every candidate, keeping input order
func (c *Classifier) Score(cands []Candidate) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, cand := range cands {
		text := c.convert(cand.Markup)
		v := c.Classify(cand.Title, text)
		c.logger.Debug("classified candidate",
			zap.String("source", cand.Source),
			zap.String("title", cand.Title),
			zap.Bool("content", v.Content),
			zap.Int("words", v.Words),
			zap.String("reason", v.Reason),
		)
		out = append(out, Scored{Candidate: cand, Text: text, Verdict: v})
	}
	return out
}

// Filter evaluates the tiers in order and returns the first non-empty
// result with the winning tier's name. Both are empty when every tier is.
func (c *Classifier) Filter(scored []Scored) (string, []Scored) {
	for _, tier := range c.tiers {
		var kept []Scored
		for _, s := range scored {
			if tier.Keep(s) {
				kept = append(kept, s)
			}
		}
		if tier.Rank {
			sort.SliceStable(kept, func(i, j int) bool { return rankedBefore(kept[i], kept[j]) })
		}
		if tier.Limit > 0 && len(kept) > tier.Limit {
			kept = kept[:tier.Limit]
		}
		if len(kept) > 0 {
			c.logger.Info("classification tier matched",
				zap.String("tier", tier.Name),
				zap.Int("survivors", len(kept)),
				zap.Int("candidates", len(scored)),
			)
			return tier.Name, kept
		}
		c.logger.Debug("classification tier empty", zap.String("tier", tier.Name))
	}
	return "", nil
}

// rankedBefore orders by word count, then title, then markup, all
// descending
func rankedBefore(a, b Scored) bool {
	if a.Verdict.Words != b.Verdict.Words {
		return a.Verdict.Words > b.Verdict.Words
	}
	if a.Title != b.Title {
		return a.Title > b.Title
	}
	return a.Markup > b.Markup
}

// headRunes returns at most n runes from the start of s
func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
