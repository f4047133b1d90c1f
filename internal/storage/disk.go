package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes objects to a directory on the local filesystem, one
// subdirectory per bucket. The location returned is a file:// URL.
type LocalUploader struct {
	baseDir string
	create  func(name string) (io.WriteCloser, error)
}

// NewLocalUploader creates a LocalUploader that writes objects under
// baseDir. The directory is created if it does not already exist.
func NewLocalUploader(baseDir string) (*LocalUploader, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local base directory %q: %w", baseDir, err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	return &LocalUploader{baseDir: abs, create: createFile}, nil
}

// Upload writes content to baseDir/bucket/objectName, creating any
// intermediate directories as needed.
func (u *LocalUploader) Upload(_ context.Context, req *UploadRequest) (*UploadResult, error) {
	if req.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	dest := filepath.Join(u.baseDir, req.Bucket, filepath.FromSlash(req.ObjectName))
	if !u.contains(dest) {
		return nil, fmt.Errorf("storage: object %q in bucket %q resolves outside %q", req.ObjectName, req.Bucket, u.baseDir)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory for %q: %w", req.ObjectName, err)
	}

	f, err := u.create(dest)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create file %q: %w", dest, err)
	}

	if _, err := io.Copy(f, req.Content); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: failed to write file %q: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("storage: failed to close file %q: %w", dest, err)
	}

	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}

	return &UploadResult{
		ObjectName: req.ObjectName,
		Location:   fileURL.String(),
	}, nil
}

// contains reports whether path lies strictly below the base directory.
func (u *LocalUploader) contains(path string) bool {
	rel, err := filepath.Rel(u.baseDir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}
