// Package media issues presigned S3 URLs for user media uploads and
// downloads. Files never pass through this service; clients talk to the
// bucket (MinIO-compatible) directly with short-lived URLs.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/avelasq/authgate/internal/config"
	domain "github.com/avelasq/authgate/internal/domain/media"
)

const urlTTL = 15 * time.Minute

type Presigner struct {
	bucket  string
	presign *s3.PresignClient
}

func NewPresigner(ctx context.Context, cfg config.Config) (*Presigner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))

	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &Presigner{
		bucket:  cfg.S3Bucket,
		presign: s3.NewPresignClient(client),
	}, nil
}

// StorageKey builds a fresh object key for a user's media slot.
func StorageKey(userID string, kind domain.Kind) string {
	return fmt.Sprintf("users/%s/%s/%s", userID, kind, uuid.NewString())
}

// PutURL returns a presigned upload URL for the given key.
func (p *Presigner) PutURL(ctx context.Context, key string) (string, error) {
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(urlTTL))

	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// GetURL returns a presigned download URL for the given key.
func (p *Presigner) GetURL(ctx context.Context, key string) (string, error) {
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(urlTTL))

	if err != nil {
		return "", err
	}

	return req.URL, nil
}
