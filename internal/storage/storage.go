// Package storage provides an abstraction for writing a single object to a
// bucket and reporting where it ended up. S3 is the production backend; GCS,
// MinIO and a local directory satisfy the same interface.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/tomasbasham/s3up/internal/config"
)

// Uploader persists an object to a storage backend and returns its location.
type Uploader interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
}

type UploadRequest struct {
	// ID identifies the upload attempt. It is stored alongside the object as
	// the "upload-id" metadata entry when non-empty.
	ID string

	// Bucket is the destination bucket.
	Bucket string

	// ObjectName is the object key within Bucket.
	ObjectName string

	// Content is the data to be uploaded.
	Content io.Reader

	// ContentType is the MIME type of the content, e.g. "text/plain".
	ContentType string

	// Size is the content length in bytes, or -1 when unknown.
	Size int64
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	// ObjectName is the object key within the bucket.
	ObjectName string

	// Location is the remote address of the stored object.
	Location string
}

const metadataUploadID = "upload-id"

func (r *UploadRequest) metadata() map[string]string {
	if r.ID == "" {
		return nil
	}
	return map[string]string{metadataUploadID: r.ID}
}

// New returns the Uploader selected by cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.Backend {
	case config.BackendS3, "":
		return NewS3Uploader(ctx, cfg)
	case config.BackendGCS:
		return NewGCSUploader(ctx, cfg)
	case config.BackendMinio:
		return NewMinioUploader(cfg)
	case config.BackendLocal:
		return NewLocalUploader(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
