package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/pkg/config"
)

// Archiver copies finished report files into an object storage bucket.
// Archival is best-effort: the local file is the artifact of record and
// callers treat archive failures as warnings.
type Archiver struct {
	client *minio.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewArchiver creates an archiver and ensures the bucket exists. Reports
// may contain sensitive discussion so the bucket gets no public policy.
func NewArchiver(cfg config.ArchiveConfig, logger *zap.Logger) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	a := &Archiver{
		client: client,
		bucket: cfg.BucketName,
		prefix: cfg.Prefix,
		logger: logger,
	}

	if err := a.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return a, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveReport uploads the report file at localPath under the configured
// prefix, retrying transient failures with exponential backoff
func (a *Archiver) ArchiveReport(ctx context.Context, localPath, fileName string) error {
	objectName := path.Join(a.prefix, fileName)

	upload := func() error {
		_, err := a.client.FPutObject(ctx, a.bucket, objectName, localPath, minio.PutObjectOptions{
			ContentType: "application/json",
		})
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(upload, backoff.WithContext(bo, ctx)); err != nil {
		return apperrors.ErrStorage("archive report", err)
	}

	a.logger.Info("📤 Report archived",
		zap.String("bucket", a.bucket),
		zap.String("object", objectName))

	return nil
}
