package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config is the bucket recipe images are uploaded to
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Region     string
}

// NewS3Config loads AWS credentials from the environment or shared config for the
// configured bucket.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET_NAME is not set")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3Bucket,
		Region:     cfg.AWSRegion,
	}, nil
}

// PublicURL is the address an object key is served from
func (c *S3Config) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.BucketName, key)
}

// KeyFromURL reverses PublicURL. References from elsewhere are returned unchanged.
func (c *S3Config) KeyFromURL(ref string) string {
	return strings.TrimPrefix(ref, c.PublicURL(""))
}
