package epub

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/JimCorrell/ScribeStack/internal/config"
	"go.uber.org/zap"
)

func testRules() Rules {
	return Rules{
		TitleKeywords: config.DefaultTitleKeywords,
		ContentHints:  config.DefaultContentHints,
		SampleChars:   500,
		MinWords:      200,
		FallbackLimit: 10,
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(testRules(), zap.NewNop())

	tests := []struct {
		name        string
		title       string
		text        string
		wantContent bool
		wantReason  string
	}{
		{"exact keyword", "Preface", prose(300), false, "title:preface"},
		{"keyword substring", "Author's Preface and Notes", prose(300), false, "title:preface"},
		{"upper case", "TABLE OF CONTENTS", prose(300), false, "title:contents"},
		{"plain chapter", "The Long Road", prose(300), true, ""},
		{"hint early", "Page 4", "All rights reserved. " + prose(300), false, "content:all rights reserved"},
		{"hint case-insensitive", "Page 4", "ISBN 978-0-00-000000-0 " + prose(10), false, "content:isbn"},
		{"hint past sample", "The Long Road", strings.Repeat("x", 500) + " all rights reserved", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.title, tt.text)
			if v.Content != tt.wantContent {
				t.Errorf("Content = %v, want %v (reason %q)", v.Content, tt.wantContent, v.Reason)
			}
			if v.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_WordCount(t *testing.T) {
	c := NewClassifier(testRules(), zap.NewNop())
	if v := c.Classify("x", "one two\nthree   four"); v.Words != 4 {
		t.Errorf("Words = %d, want 4", v.Words)
	}
}

func TestHeadRunes(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 3, "hel"},
		{"hello", 10, "hello"},
		{"héllo", 2, "hé"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := headRunes(tt.s, tt.n); got != tt.want {
			t.Errorf("headRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func scored(title string, words int) Candidate {
	return Candidate{Title: title, Markup: page(prose(words)), Source: fmt.Sprintf("%s.xhtml", strings.ReplaceAll(title, " ", "_"))}
}

func scoredSources(s []Scored) []string {
	out := make([]string, 0, len(s))
	for _, x := range s {
		out = append(out, x.Source)
	}
	return out
}

func TestFilter_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		cands    []Candidate
		wantTier string
		want     []string
	}{
		{
			name: "primary keeps reading order",
			cands: []Candidate{
				scored("Preface", 400),
				scored("One", 250),
				scored("Two", 900),
				scored("Short", 50),
			},
			wantTier: TierPrimary,
			want:     []string{"One.xhtml", "Two.xhtml"},
		},
		{
			name: "content-longest ranks short content",
			cands: []Candidate{
				scored("Copyright", 190),
				scored("A", 20),
				scored("B", 120),
				scored("C", 60),
			},
			wantTier: TierContentLongest,
			want:     []string{"B.xhtml", "C.xhtml", "A.xhtml"},
		},
		{
			name: "ranking ties break by title descending",
			cands: []Candidate{
				scored("A", 50),
				scored("C", 50),
				scored("B", 50),
				scored("D", 80),
			},
			wantTier: TierContentLongest,
			want:     []string{"D.xhtml", "C.xhtml", "B.xhtml", "A.xhtml"},
		},
	}

	c := NewClassifier(testRules(), zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, kept := c.Filter(c.Score(tt.cands))
			if tier != tt.wantTier {
				t.Errorf("tier = %q, want %q", tier, tt.wantTier)
			}
			if got := scoredSources(kept); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_LongestFallbackCapsAtLimit(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 12; i++ {
		cands = append(cands, Candidate{
			Title:  "Copyright",
			Markup: page(prose(10 + i)),
			Source: fmt.Sprintf("c%02d.xhtml", i),
		})
	}

	c := NewClassifier(testRules(), zap.NewNop())
	tier, kept := c.Filter(c.Score(cands))

	if tier != TierLongest {
		t.Fatalf("tier = %q, want %q", tier, TierLongest)
	}
	if len(kept) != 10 {
		t.Fatalf("kept %d, want 10", len(kept))
	}
	if kept[0].Source != "c11.xhtml" || kept[9].Source != "c02.xhtml" {
		t.Errorf("kept = %v", scoredSources(kept))
	}
	for i := 1; i < len(kept); i++ {
		if kept[i].Verdict.Words > kept[i-1].Verdict.Words {
			t.Errorf("kept not ranked at %d: %v", i, scoredSources(kept))
		}
	}
}

func TestFilter_Empty(t *testing.T) {
	c := NewClassifier(testRules(), zap.NewNop())
	tier, kept := c.Filter(nil)
	if tier != "" || kept != nil {
		t.Errorf("Filter(nil) = %q, %v", tier, kept)
	}
}

func TestWithTiers(t *testing.T) {
	only := []Tier{{Name: "short-only", Keep: func(s Scored) bool { return s.Verdict.Words < 30 }}}
	c := NewClassifier(testRules(), zap.NewNop()).WithTiers(only)

	tier, kept := c.Filter(c.Score([]Candidate{scored("A", 10), scored("B", 300)}))
	if tier != "short-only" || len(kept) != 1 || kept[0].Source != "A.xhtml" {
		t.Errorf("Filter() = %q, %v", tier, scoredSources(kept))
	}
}
