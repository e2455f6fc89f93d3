// internal/services/storage_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/javajoker/catalog-backend/internal/config"
)

// AssetStore moves a local temporary file to durable storage and returns a
// stable reference to it.
type AssetStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type StorageService struct {
	s3Client s3iface.S3API
	config   *config.Config
	options  UploadOptions
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.Storage.Driver != "s3" {
		if err := os.MkdirAll(config.Storage.LocalDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local storage dir: %w", err)
		}
		return &StorageService{config: config, options: productUploadOptions(config)}, nil
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.AWS.Region),
	}
	if config.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		)
	}
	if config.AWS.Endpoint != "" {
		// S3 compatible stores (MinIO, localstack) need path style addressing
		awsConfig.Endpoint = aws.String(config.AWS.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageServiceWithClient(s3.New(sess), config), nil
}

// NewStorageServiceWithClient builds an S3 backed store around an existing client.
func NewStorageServiceWithClient(client s3iface.S3API, config *config.Config) *StorageService {
	return &StorageService{
		s3Client: client,
		config:   config,
		options:  productUploadOptions(config),
	}
}

// Upload checks the file against the upload options and stores it under a
// fresh key. The returned reference is a public URL.
func (s *StorageService) Upload(ctx context.Context, localPath string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	// Validate file size
	if s.options.MaxSize > 0 && info.Size() > s.options.MaxSize {
		return "", fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", info.Size(), s.options.MaxSize)
	}

	// Validate file type from its content, not its name
	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if len(s.options.AllowedTypes) > 0 && !mimetype.EqualsAny(mtype.String(), s.options.AllowedTypes...) {
		return "", fmt.Errorf("file type %s is not allowed", mtype.String())
	}

	key := s.generateFileName(mtype.Extension(), s.options.Folder)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, localPath, key, mtype.String(), info.Size())
	}

	return s.uploadToLocal(localPath, key)
}

func (s *StorageService) uploadToS3(ctx context.Context, localPath, key, contentType string, size int64) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if s.options.IsPublic {
		params.ACL = aws.String("public-read")
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.getS3URL(key), nil
}

// uploadToLocal copies the file under the local storage dir, which the
// router serves at /uploads.
func (s *StorageService) uploadToLocal(localPath, key string) (string, error) {
	dst := filepath.Join(s.config.Storage.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create stored file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.config.Storage.PublicBaseURL, key), nil
}

func productUploadOptions(config *config.Config) UploadOptions {
	return UploadOptions{
		Folder:       "products",
		MaxSize:      config.Storage.MaxFileSize,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		IsPublic:     true,
	}
}

func (s *StorageService) generateFileName(ext, folder string) string {
	// Create filename with timestamp and UUID
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.NewString(), ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	if s.config.AWS.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.config.AWS.Endpoint, s.config.AWS.S3Bucket, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
