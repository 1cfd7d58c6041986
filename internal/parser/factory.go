package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JimCorrell/ScribeStack/pkg/types"
	"go.uber.org/zap"
)

// DefaultFactory creates parsers for supported formats
type DefaultFactory struct {
	parsers map[string]Parser
}

// NewFactory creates a new parser factory with default parsers
func NewFactory(cfg types.ExtractionConfig, logger *zap.Logger) (*DefaultFactory, error) {
	f := &DefaultFactory{
		parsers: make(map[string]Parser),
	}

	ep, err := NewEPUBParser(cfg, logger)
	if err != nil {
		return nil, err
	}
	f.registerParser(ep)

	return f, nil
}

// registerParser registers a parser for its supported formats
func (f *DefaultFactory) registerParser(p Parser) {
	for _, format := range p.SupportedFormats() {
		f.parsers[strings.ToLower(format)] = p
	}
}

// GetParser returns a parser for the given format
func (f *DefaultFactory) GetParser(format string) (Parser, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	parser, ok := f.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return parser, nil
}

// ForFile returns the parser matching the file's extension
func (f *DefaultFactory) ForFile(name string) (Parser, error) {
	return f.GetParser(filepath.Ext(name))
}
