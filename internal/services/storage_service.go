// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// Upload kinds accepted by POST /uploads/:kind.
const (
	UploadKindDocuments     = "documents"
	UploadKindAvatars       = "avatars"
	UploadKindArticleCovers = "article-covers"
	UploadKindPostImages    = "post-images"
)

// ErrUnknownUploadKind is returned for a kind with no upload options.
var ErrUnknownUploadKind = errors.New("unknown upload kind")

type StorageService struct {
	s3Client s3iface.S3API
	bucket   string
	region   string
	cdnURL   string
	localURL string
	log      *logrus.Entry
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Private  bool   `json:"private"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	ImageOnly    bool
	IsPublic     bool
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		bucket:   cfg.AWS.S3Bucket,
		region:   cfg.AWS.Region,
		cdnURL:   strings.TrimRight(cfg.AWS.CloudFrontURL, "/"),
		localURL: fmt.Sprintf("http://localhost:%s/uploads", cfg.Server.Port),
		log:      logrus.WithField("service", "storage"),
	}

	if cfg.AWS.AccessKeyID == "" {
		// local development: uploads are accepted but not persisted
		svc.log.Warn("AWS credentials not configured, using local upload URLs")
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

// WithClient swaps the S3 client, e.g. for a fake in tests.
func (s *StorageService) WithClient(client s3iface.S3API) *StorageService {
	s.s3Client = client
	return s
}

// UploadOptionsFor returns the limits for an upload kind.
func UploadOptionsFor(kind string) (UploadOptions, error) {
	switch kind {
	case UploadKindDocuments:
		return UploadOptions{
			Folder:       "documents",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: []string{".pdf", ".jpg", ".jpeg", ".png"},
			IsPublic:     false,
		}, nil
	case UploadKindAvatars:
		return UploadOptions{
			Folder:       "avatars",
			MaxSize:      2 * 1024 * 1024, // 2MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png"},
			ImageOnly:    true,
			IsPublic:     true,
		}, nil
	case UploadKindArticleCovers:
		return UploadOptions{
			Folder:       "article-covers",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif"},
			ImageOnly:    true,
			IsPublic:     true,
		}, nil
	case UploadKindPostImages:
		return UploadOptions{
			Folder:       "post-images",
			MaxSize:      MaxPostImageBytes,
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif"},
			ImageOnly:    true,
			IsPublic:     true,
		}, nil
	}
	return UploadOptions{}, fmt.Errorf("%w: %q", ErrUnknownUploadKind, kind)
}

// UploadFile stores one file under the owner's folder. Rejections are
// returned as *ValidationError.
func (s *StorageService) UploadFile(ctx context.Context, owner string, file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fieldError("file", "max", fmt.Sprintf("file must be at most %d bytes", options.MaxSize))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(options.AllowedTypes) > 0 && !containsString(options.AllowedTypes, ext) {
		return nil, fieldError("file", "type", fmt.Sprintf("file type %q is not allowed", ext))
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxReadSize(options)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if options.MaxSize > 0 && int64(len(fileBytes)) > options.MaxSize {
		return nil, fieldError("file", "max", fmt.Sprintf("file must be at most %d bytes", options.MaxSize))
	}
	if options.ImageOnly && !isValidImageType(fileBytes) {
		return nil, fieldError("file", "image", "file is not a valid image")
	}

	key, err := s.generateKey(options.Folder, owner, ext)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(fileBytes)
	}

	if s.s3Client == nil {
		return &UploadResult{
			URL:      fmt.Sprintf("%s/%s", s.localURL, key),
			Key:      key,
			Size:     int64(len(fileBytes)),
			MimeType: contentType,
			Private:  !options.IsPublic,
		}, nil
	}

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}
	if options.IsPublic {
		params.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.log.WithFields(logrus.Fields{"key": key, "size": len(fileBytes)}).Info("File uploaded")

	result := &UploadResult{
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
		Private:  !options.IsPublic,
	}
	if options.IsPublic {
		result.URL = s.objectURL(key)
	}
	return result, nil
}

func maxReadSize(options UploadOptions) int64 {
	if options.MaxSize <= 0 {
		return 50 * 1024 * 1024
	}
	return options.MaxSize + 1
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if s.s3Client == nil {
		s.log.WithField("key", key).Debug("No S3 client, skipping delete")
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GeneratePresignedURL gives temporary read access to a private object such
// as a member document.
func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return fmt.Sprintf("%s/%s", s.localURL, key), nil
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

// generateKey builds folder/owner/yyyymmdd_<random><ext>.
func (s *StorageService) generateKey(folder, owner, ext string) (string, error) {
	suffix, err := utils.GenerateRandomString(12)
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102"), suffix, ext)
	parts := []string{}
	for _, p := range []string{folder, owner, filename} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/"), nil
}

func (s *StorageService) objectURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}
	// PNG
	if len(buffer) >= 8 && bytes.Equal(buffer[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return true
	}
	// GIF
	if len(buffer) >= 6 && (string(buffer[:6]) == "GIF87a" || string(buffer[:6]) == "GIF89a") {
		return true
	}
	return false
}
