package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ImageStore persists decoded recipe images and returns a reference to them
type ImageStore interface {
	Save(ctx context.Context, img *types.ImagePayload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// S3ImageStore keeps images in an S3 bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

// Save uploads image data to S3 and returns the public URL
func (s *S3ImageStore) Save(ctx context.Context, img *types.ImagePayload) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(img.Filename),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	publicURL := s.s3Config.PublicURL(img.Filename)
	logging.Debug().Str("url", publicURL).Msg("uploaded image to S3")
	return publicURL, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(s.s3Config.KeyFromURL(ref)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images below Root and serves them under BaseURL
type LocalImageStore struct {
	Root    string
	BaseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{Root: root, BaseURL: baseURL}
}

func (s *LocalImageStore) Save(_ context.Context, img *types.ImagePayload) (string, error) {
	path, err := s.path(img.Filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.BaseURL + img.Filename, nil
}

func (s *LocalImageStore) Delete(_ context.Context, ref string) error {
	path, err := s.path(strings.TrimPrefix(ref, s.BaseURL))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// path resolves name below Root and rejects anything that escapes it
func (s *LocalImageStore) path(name string) (string, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.Root, clean), nil
}
