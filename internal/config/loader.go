package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/JimCorrell/ScribeStack/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultTitleKeywords mark a candidate as front/back matter when the
// lowercased title equals or contains one of them.
var DefaultTitleKeywords = []string{
	"copyright",
	"inside front cover",
	"inside back cover",
	"front matter",
	"back matter",
	"brief contents",
	"contents",
	"table of contents",
	"acknowledgments",
	"acknowledgements",
	"preface",
	"foreword",
	"index",
	"about the author",
	"references",
	"glossary",
}

// DefaultContentHints mark a candidate as front/back matter when they
// appear in the opening sample of its text.
var DefaultContentHints = []string{
	"all rights reserved",
	"isbn",
	"no part of this",
	"printed in",
	"copyright",
	"table of contents",
	"index",
}

// DefaultChapterNamePattern matches file names like ch01.xhtml
const DefaultChapterNamePattern = `(?i)ch\d+`

// Load reads and parses the configuration file.
// Values missing from the file keep their defaults; SS_ environment
// variables override both.
func Load(configPath string) (*types.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configPath when it is set and exists, otherwise it
// starts from GetDefault. Environment overrides apply in both cases.
func LoadOrDefault(configPath string) (*types.Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	cfg := GetDefault()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid. Zero thresholds are kept
// as set; defaults come from GetDefault.
func Validate(cfg *types.Config) error {
	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" && cfg.Storage.Local.BasePath == "" {
		return fmt.Errorf("local storage base_path is required")
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	ex := &cfg.Extraction
	if ex.ChapterNamePattern == "" {
		ex.ChapterNamePattern = DefaultChapterNamePattern
	}
	if _, err := regexp.Compile(ex.ChapterNamePattern); err != nil {
		return fmt.Errorf("invalid chapter_name_pattern: %w", err)
	}
	if ex.SampleChars < 0 || ex.MinWords < 0 || ex.FallbackLimit < 0 || ex.MinChars < 0 {
		return fmt.Errorf("extraction thresholds must not be negative")
	}
	ex.TitleKeywords = normalizeKeywords(ex.TitleKeywords)
	ex.ContentHints = normalizeKeywords(ex.ContentHints)

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (must be 'json' or 'console')", cfg.Logging.Format)
	}

	return nil
}

// normalizeKeywords lowercases and trims keywords, dropping blanks
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with SS_ (ScribeStack)
func applyEnvOverrides(cfg *types.Config) {
	// Storage overrides
	if val := os.Getenv("SS_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("SS_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("SS_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("SS_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("SS_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("SS_STORAGE_S3_PREFIX"); val != "" {
		cfg.Storage.S3.Prefix = val
	}
	if val := os.Getenv("SS_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("SS_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}

	// Extraction overrides
	if val := os.Getenv("SS_EXTRACTION_MIN_WORDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Extraction.MinWords = n
		}
	}
	if val := os.Getenv("SS_EXTRACTION_MIN_CHARS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Extraction.MinChars = n
		}
	}
	if val := os.Getenv("SS_EXTRACTION_LEGACY_NUMBERING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Extraction.LegacyNumbering = b
		}
	}

	// Logging overrides
	if val := os.Getenv("SS_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SS_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "input",
			},
		},
		Extraction: types.ExtractionConfig{
			ChapterNamePattern: DefaultChapterNamePattern,
			TitleKeywords:      append([]string(nil), DefaultTitleKeywords...),
			ContentHints:       append([]string(nil), DefaultContentHints...),
			SampleChars:        500,
			MinWords:           200,
			FallbackLimit:      10,
			MinChars:           100,
		},
		Logging: types.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
