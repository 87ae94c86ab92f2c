package media

import (
	"context"
	"fmt"
	"strings"

	"go-shop/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores images in an S3 compatible bucket (AWS, MinIO).
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Uploader(ctx context.Context, cfg config.MediaConfig) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		baseURL: publicBaseURL(cfg),
	}, nil
}

// publicBaseURL is the URL objects are served from, without trailing slash.
func publicBaseURL(cfg config.MediaConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (u *S3Uploader) Upload(ctx context.Context, img *Image) (string, error) {
	key := u.prefix + "/" + uuid.NewString() + img.Ext
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        img.reader(),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return u.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs not served from this bucket
// are ignored.
func (u *S3Uploader) Delete(ctx context.Context, url string) error {
	key, ok := u.keyFor(url)
	if !ok {
		return nil
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (u *S3Uploader) keyFor(url string) (string, bool) {
	if !strings.HasPrefix(url, u.baseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, u.baseURL+"/"), true
}

// HealthCheck verifies the bucket is reachable.
func (u *S3Uploader) HealthCheck(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

// NewUploader returns an S3Uploader, or Disabled when no bucket is set.
func NewUploader(ctx context.Context, cfg config.MediaConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return Disabled{}, nil
	}
	return NewS3Uploader(ctx, cfg)
}
