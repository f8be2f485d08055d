// Package storage keeps uploaded business documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appidentity "github.com/sevenext/backend/internal/application/identity"
	infraconfig "github.com/sevenext/backend/internal/infrastructure/config"
)

const (
	defaultEndpoint   = "http://localhost:9000"
	defaultRegion     = "us-east-1"
	defaultLinkExpiry = 15 * time.Minute
)

var _ appidentity.DocumentStorage = (*S3DocumentStorage)(nil)

var (
	errMissingKey    = errors.New("storage key is required")
	requiredSettings = []struct {
		name  string
		value func(*infraconfig.StorageConfig) string
	}{
		{"bucket", func(c *infraconfig.StorageConfig) string { return c.Bucket }},
		{"access key", func(c *infraconfig.StorageConfig) string { return c.AccessKey }},
		{"secret key", func(c *infraconfig.StorageConfig) string { return c.SecretKey }},
	}
)

// S3DocumentStorage stores B2B documents (GST certificates, business licences)
// in a single bucket of any S3-compatible backend such as AWS S3 or MinIO.
type S3DocumentStorage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	linkExpiry time.Duration
	logger     *zap.Logger
}

// Option configures an S3DocumentStorage
type Option func(*S3DocumentStorage)

// WithLogger sets the logger used for bucket setup and uploads
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3DocumentStorage) {
		s.logger = logger
	}
}

// NewS3DocumentStorage builds the client from the storage settings.
// Download links live for storage.presign_expiration, 15 minutes when unset.
func NewS3DocumentStorage(cfg *infraconfig.StorageConfig, opts ...Option) (*S3DocumentStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	for _, setting := range requiredSettings {
		if setting.value(cfg) == "" {
			return nil, fmt.Errorf("storage %s is required", setting.name)
		}
	}
	endpoint, err := resolveEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 client config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := &S3DocumentStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		linkExpiry: cfg.PresignExpiration,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.linkExpiry <= 0 {
		store.linkExpiry = defaultLinkExpiry
	}
	return store, nil
}

// resolveEndpoint adds the scheme a bare host:port is missing
func resolveEndpoint(raw string, useSSL bool) (string, error) {
	endpoint := strings.TrimSpace(raw)
	switch {
	case endpoint == "":
		endpoint = defaultEndpoint
	case !strings.Contains(endpoint, "://"):
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid storage endpoint scheme %q", parsed.Scheme)
	}
	return endpoint, nil
}

// EnsureBucket creates the document bucket on first start
func (s *S3DocumentStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var (
		notFound *types.NotFound
		noBucket *types.NoSuchBucket
	)
	if !errors.As(err, &notFound) && !errors.As(err, &noBucket) {
		return fmt.Errorf("failed to look up bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating document bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload puts a document under key
func (s *S3DocumentStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errMissingKey
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload document %s: %w", key, err)
	}
	s.logger.Debug("Document uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// GenerateDownloadURL presigns a GET for key that the browser renders inline.
// A non-positive expiresIn uses the configured link expiry.
func (s *S3DocumentStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errMissingKey
	}
	if expiresIn <= 0 {
		expiresIn = s.linkExpiry
	}
	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign link for %s: %w", key, err)
	}
	return signed.URL, time.Now().Add(expiresIn), nil
}

// DeleteObject removes a document; S3 treats a missing key as success
func (s *S3DocumentStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errMissingKey
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}
