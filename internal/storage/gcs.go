package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tomasbasham/s3up/internal/config"
)

const gcsHost = "storage.googleapis.com"

// GCSUploader uploads objects to a Google Cloud Storage bucket.
type GCSUploader struct {
	client *storage.Client
}

// NewGCSUploader creates a GCSUploader. When cfg.GCSCredentialsFile is set it
// is used as the service account key, otherwise application default
// credentials apply. Extra opts are passed through to the GCS client.
func NewGCSUploader(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*GCSUploader, error) {
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCS client: %w", err)
	}
	return &GCSUploader{client: client}, nil
}

// Upload writes content to GCS at req.ObjectName and returns its public URL.
func (u *GCSUploader) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	obj := u.client.Bucket(req.Bucket).Object(req.ObjectName)
	w := obj.NewWriter(ctx)
	w.ContentType = req.ContentType
	w.Metadata = req.metadata()

	if _, err := io.Copy(w, req.Content); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("storage: upload write failed for %q: %w", req.ObjectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("storage: upload close failed for %q: %w", req.ObjectName, err)
	}

	loc := &url.URL{Scheme: "https", Host: gcsHost, Path: "/" + req.Bucket + "/" + req.ObjectName}

	return &UploadResult{
		ObjectName: req.ObjectName,
		Location:   loc.String(),
	}, nil
}
