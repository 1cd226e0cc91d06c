package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DownloadURLTTL is how long a presigned download link stays valid.
const DownloadURLTTL = 15 * time.Minute

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
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// StorageOptions locate the S3-compatible bucket.
type StorageOptions struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// StorageService keeps user files in object storage and their metadata in
// the files table.
type StorageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	opts        StorageOptions
	logger      logging.Logger
	now         func() time.Time
}

func NewStorageService(db *sql.DB, m repomanager.RepositoryManager, opts StorageOptions, logger logging.Logger) *StorageService {
	return &StorageService{
		db:          db,
		repomanager: m,
		opts:        opts,
		logger:      logger.With("module", "storage_service"),
		now:         time.Now,
	}
}

// storageKey returns a fresh object key under the user's prefix.
func (s *StorageService) storageKey(userID string) string {
	d := s.now()
	return fmt.Sprintf("users/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *StorageService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *StorageService) presignedGetURL(ctx context.Context, client *s3.Client, key string) (string, error) {
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(DownloadURLTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Upload stores body in the bucket, records its metadata and returns the
// record together with a presigned download URL. The object is removed
// again when the metadata cannot be saved.
func (s *StorageService) Upload(ctx context.Context, userID, fileName, contentType string, size int64, body io.Reader) (*models.File, string, error) {
	if fileName == "" {
		return nil, "", fmt.Errorf("%w: file name is required", common.ErrorValidation)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "error creating s3 client", "error", err)
		return nil, "", common.ErrorInternal
	}

	key := s.storageKey(userID)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.logger.Error(ctx, "error uploading object", "key", key, "error", err)
		return nil, "", common.ErrorInternal
	}

	f, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		UserID:      userID,
		StorageKey:  key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		s.logger.Error(ctx, "error saving file metadata", "key", key, "error", err)
		if _, derr := deleteObject(client, ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(key),
		}); derr != nil {
			s.logger.Warn(ctx, "orphaned object left in bucket", "key", key, "error", derr)
		}
		return nil, "", common.ErrorInternal
	}

	url, err := s.presignedGetURL(ctx, client, key)
	if err != nil {
		s.logger.Error(ctx, "error presigning download", "key", key, "error", err)
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "file uploaded", "user_id", userID, "file_id", f.ID, "size", size)
	return f, url, nil
}

func (s *StorageService) List(ctx context.Context, userID string) ([]*models.File, error) {
	files, err := s.repomanager.Files(s.db).ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "error listing files", "error", err)
		return nil, common.ErrorInternal
	}
	if files == nil {
		files = []*models.File{}
	}
	return files, nil
}

// DownloadURL returns a presigned GET URL for one of the user's files.
func (s *StorageService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	f, err := s.getFile(ctx, userID, id)
	if err != nil {
		return "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "error creating s3 client", "error", err)
		return "", common.ErrorInternal
	}

	url, err := s.presignedGetURL(ctx, client, f.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "error presigning download", "key", f.StorageKey, "error", err)
		return "", common.ErrorInternal
	}
	return url, nil
}

// Delete removes the object from the bucket and then its metadata.
func (s *StorageService) Delete(ctx context.Context, userID, id string) error {
	f, err := s.getFile(ctx, userID, id)
	if err != nil {
		return err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "error creating s3 client", "error", err)
		return common.ErrorInternal
	}

	if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(f.StorageKey),
	}); err != nil {
		s.logger.Error(ctx, "error deleting object", "key", f.StorageKey, "error", err)
		return common.ErrorInternal
	}

	if err := s.repomanager.Files(s.db).Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "error deleting file metadata", "file_id", id, "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *StorageService) getFile(ctx context.Context, userID, id string) (*models.File, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	f, err := s.repomanager.Files(s.db).Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error loading file", "file_id", id, "error", err)
		return nil, common.ErrorInternal
	}
	return f, nil
}
