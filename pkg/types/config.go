package types

// Config represents the overall application configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string           `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	Prefix          string `yaml:"prefix" json:"prefix"` // key prefix prepended to every path
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// ExtractionConfig holds the chapter detection heuristics.
// Keyword lists are lowercase and matched as substrings.
type ExtractionConfig struct {
	ChapterNamePattern string   `yaml:"chapter_name_pattern" json:"chapter_name_pattern"`
	TitleKeywords      []string `yaml:"title_keywords" json:"title_keywords"`
	ContentHints       []string `yaml:"content_hints" json:"content_hints"`
	SampleChars        int      `yaml:"sample_chars" json:"sample_chars"`
	MinWords           int      `yaml:"min_words" json:"min_words"`
	FallbackLimit      int      `yaml:"fallback_limit" json:"fallback_limit"`
	MinChars           int      `yaml:"min_chars" json:"min_chars"`
	LegacyNumbering    bool     `yaml:"legacy_numbering" json:"legacy_numbering"`
}

// LoggingConfig selects the zap logger flavour
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // "json" or "console"
}
