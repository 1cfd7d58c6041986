package parser

import (
	"testing"

	"github.com/JimCorrell/ScribeStack/internal/config"
	"go.uber.org/zap"
)

func TestFactory(t *testing.T) {
	factory, err := NewFactory(config.GetDefault().Extraction, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}

	t.Run("Get ePUB parser", func(t *testing.T) {
		parser, err := factory.GetParser("epub")
		if err != nil {
			t.Fatalf("Failed to get epub parser: %v", err)
		}
		if parser == nil {
			t.Fatal("Got nil parser")
		}
	})

	t.Run("Case insensitive", func(t *testing.T) {
		parser1, err1 := factory.GetParser("EPUB")
		parser2, err2 := factory.GetParser(".epub")

		if err1 != nil || err2 != nil {
			t.Fatal("Factory should be case insensitive and accept a leading dot")
		}

		if parser1 == nil || parser2 == nil {
			t.Fatal("Got nil parser")
		}
	})

	t.Run("By file name", func(t *testing.T) {
		if _, err := factory.ForFile("/books/Moby Dick.EPUB"); err != nil {
			t.Errorf("ForFile() error = %v", err)
		}
	})

	t.Run("Unsupported format", func(t *testing.T) {
		for _, format := range []string{"txt", "pdf", "doc", ""} {
			if _, err := factory.GetParser(format); err == nil {
				t.Errorf("Expected error for unsupported format %q", format)
			}
		}
	})
}

func TestNewFactory_BadPattern(t *testing.T) {
	cfg := config.GetDefault().Extraction
	cfg.ChapterNamePattern = "ch(["
	if _, err := NewFactory(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for invalid chapter name pattern")
	}
}
