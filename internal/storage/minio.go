package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomasbasham/s3up/internal/config"
)

// MinioUploader uploads objects to a MinIO (or other S3-compatible) server
// through the MinIO SDK.
type MinioUploader struct {
	client *minio.Client
}

// NewMinioUploader creates a MinioUploader using the access key pair from cfg
// as static V4 credentials.
func NewMinioUploader(cfg *config.Config) (*MinioUploader, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create MinIO client: %w", err)
	}
	return &MinioUploader{client: mc}, nil
}

// Upload sends the content to the bucket in a single PUT. Multipart is
// disabled, so req.Size must be known.
func (u *MinioUploader) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req.Size < 0 {
		return nil, fmt.Errorf("storage: size of %q is required", req.ObjectName)
	}
	opts := minio.PutObjectOptions{
		ContentType:      req.ContentType,
		UserMetadata:     req.metadata(),
		DisableMultipart: true,
	}

	if _, err := u.client.PutObject(ctx, req.Bucket, req.ObjectName, req.Content, req.Size, opts); err != nil {
		return nil, fmt.Errorf("storage: put object %q failed: %w", req.ObjectName, err)
	}

	return &UploadResult{
		ObjectName: req.ObjectName,
		Location:   u.client.EndpointURL().JoinPath(req.Bucket, req.ObjectName).String(),
	}, nil
}
