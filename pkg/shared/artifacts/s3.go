package artifacts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/pkg/shared/config"
)

// S3Uploader copies saved artifacts to a bucket.
type S3Uploader struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	logger   hclog.Logger
}

// NewS3Uploader returns nil when S3 upload is disabled.
func NewS3Uploader(cfg *config.Config, logger hclog.Logger) (*S3Uploader, error) {
	s3cfg := cfg.Artifacts.S3
	if !s3cfg.Enabled {
		return nil, nil
	}

	awsConfig := &aws.Config{Region: aws.String(s3cfg.Region)}
	if s3cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(s3cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &S3Uploader{
		uploader: s3manager.NewUploader(sess),
		bucket:   s3cfg.Bucket,
		prefix:   strings.Trim(s3cfg.Prefix, "/"),
		logger:   logger.Named("s3"),
	}, nil
}

// Key returns the object key for a local artifact file.
func (u *S3Uploader) Key(localPath string) string {
	return path.Join(u.prefix, filepath.Base(localPath))
}

// Upload copies the file at localPath and returns the object location.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact %q: %w", localPath, err)
	}
	defer f.Close()

	key := u.Key(localPath)
	u.logger.Info("uploading artifact", "bucket", u.bucket, "key", key)
	result, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact %q: %w", localPath, err)
	}
	u.logger.Info("uploaded artifact", "location", result.Location)
	return result.Location, nil
}
