// Package storage archives benchmark inputs to object storage so a run can
// be replayed later against new engine versions.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ArchiveConfig configures the optional object storage archive.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Archive uploads audio files to a MinIO (or S3 compatible) bucket.
type Archive struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewArchive connects to the object store and ensures the bucket exists.
// Returns nil (a disabled archive) when the endpoint is empty.
func NewArchive(ctx context.Context, cfg ArchiveConfig, logger *zap.Logger) (*Archive, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &Archive{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Store uploads the file under a date-prefixed object name and returns that
// name. A nil archive is a no-op.
func (a *Archive) Store(ctx context.Context, localPath string) (string, error) {
	if a == nil {
		return "", nil
	}
	objectName := fmt.Sprintf("%s/%s",
		time.Now().UTC().Format("2006-01-02"), filepath.Base(localPath))
	info, err := a.client.FPutObject(ctx, a.bucket, objectName, localPath,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", localPath, err)
	}
	a.logger.Debug("archived audio",
		zap.String("object", objectName), zap.Int64("size", info.Size))
	return objectName, nil
}
