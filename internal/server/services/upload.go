package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	sc "github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/google/uuid"
)

const (
	imageKeyPrefix  = "images/"
	presignValidity = 15 * time.Minute
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageFile describes an uploaded image as received from the client.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService stores images in S3-compatible object storage.
type UploadService struct {
	config *sc.Config
	log    logging.Logger
}

func NewUploadService(cfg *sc.Config, log logging.Logger) *UploadService {
	return &UploadService{config: cfg, log: log.With("module", "uploads")}
}

// GetRandomStorageKey returns images/<yyyy>/<m>/<d>/<uuid><ext>.
func GetRandomStorageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("%s%d/%d/%d/%v%s", imageKeyPrefix, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// imageExt keeps only short alphanumeric extensions.
func imageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func validKey(key string) bool {
	return strings.HasPrefix(key, imageKeyPrefix) && path.Clean(key) == key && !strings.Contains(key, "..")
}

func (s *UploadService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *UploadService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// UploadImage stores the image under a fresh key and returns the key with a
// presigned GET URL.
func (s *UploadService) UploadImage(ctx context.Context, userID string, f ImageFile) (*models.Upload, error) {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", common.ErrInvalidUpload, f.ContentType)
	}
	if f.Size <= 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrInvalidUpload)
	}
	if f.Size > s.config.MaxUploadSize {
		return nil, common.ErrUploadTooLarge
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(imageExt(f.Filename))

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          f.Body,
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(f.Size),
		Metadata:      map[string]string{"owner": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("error storing object: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "image stored", "user_id", userID, "key", key, "size", f.Size)
	return &models.Upload{Key: key, URL: req.URL}, nil
}

// GetPresignedPutUrl reserves a key and returns a URL the client can PUT the
// image to directly.
func (s *UploadService) GetPresignedPutUrl(ctx context.Context, filename string) (*models.Upload, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(imageExt(filename))

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return nil, err
	}

	return &models.Upload{Key: key, URL: req.URL}, nil
}

func (s *UploadService) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
