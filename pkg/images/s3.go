package images

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/carbonquest/carbonquest/pkg/config"
)

// s3Store stores proof images in an S3-compatible bucket.
type s3Store struct {
	client  *s3.Client
	bucket  string
	urlBase string
}

// NewS3Store creates an S3-backed image store. A custom endpoint supports
// S3-compatible stores such as MinIO.
func NewS3Store(ctx context.Context, cfg *config.ImagesConfig) (*s3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{
		client:  client,
		bucket:  cfg.Bucket,
		urlBase: cfg.URLBase,
	}, nil
}

func (s *s3Store) Put(ctx context.Context, data []byte, contentType string) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyImage
	}

	key := NewKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to store image: %w", err)
	}

	return key, s.url(key), nil
}

func (s *s3Store) url(key string) string {
	return strings.TrimSuffix(s.urlBase, "/") + "/" + key
}
