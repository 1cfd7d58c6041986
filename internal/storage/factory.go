package storage

import (
	"fmt"

	"github.com/JimCorrell/ScribeStack/pkg/types"
	"go.uber.org/zap"
)

// NewAdapter creates a new storage adapter based on the configuration
func NewAdapter(cfg types.StorageConfig, logger *zap.Logger) (Adapter, error) {
	switch cfg.Adapter {
	case "local":
		logger.Debug("using local storage", zap.String("base_path", cfg.Local.BasePath))
		return NewLocalAdapter(cfg.Local.BasePath)
	case "s3":
		logger.Debug("using s3 storage",
			zap.String("bucket", cfg.S3.Bucket),
			zap.String("region", cfg.S3.Region),
			zap.String("prefix", cfg.S3.Prefix),
		)
		return NewS3Adapter(S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Adapter)
	}
}
