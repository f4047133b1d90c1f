// Package upload reads one local file and hands it to a storage backend
// exactly once.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/tomasbasham/s3up/internal/storage"
)

const (
	// DefaultSourcePath is the file uploaded when no other path is given.
	DefaultSourcePath = "data/file.txt"

	// DefaultPrefix is the folder every object key is placed under.
	DefaultPrefix = "folder"

	sniffLen = 512
)

// Options describes a single upload.
type Options struct {
	// Bucket is the destination bucket. It is passed through unchecked.
	Bucket string

	// SourcePath is the local file to upload. Defaults to DefaultSourcePath.
	SourcePath string

	// Prefix is prepended to the object key. Defaults to DefaultPrefix.
	Prefix string

	// Now returns the time used in the object key. Defaults to time.Now.
	Now func() time.Time

	// Logger receives debug output. Defaults to a logger that discards.
	Logger *slog.Logger
}

// ObjectKey builds "<prefix>/<unix millis>_<base name of path>". Two calls in
// the same millisecond for the same file yield the same key.
func ObjectKey(prefix string, now time.Time, path string) string {
	return prefix + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + filepath.Base(path)
}

// NewRequest builds the request for body, stamping it with a fresh upload ID.
// The size is left unknown.
func NewRequest(bucket, prefix, path string, body io.Reader, contentType string, now time.Time) *storage.UploadRequest {
	return &storage.UploadRequest{
		ID:          uuid.NewString(),
		Bucket:      bucket,
		ObjectName:  ObjectKey(prefix, now, path),
		Content:     body,
		ContentType: contentType,
		Size:        -1,
	}
}

// Run opens the source file and uploads it through u. It performs exactly one
// Upload call and makes no attempt to retry; the caller receives either the
// result or the error.
func Run(ctx context.Context, u storage.Uploader, opts Options) (*storage.UploadResult, error) {
	opts = opts.withDefaults()

	f, err := os.Open(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("upload: failed to open source file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("upload: failed to stat %q: %w", opts.SourcePath, err)
	}

	contentType, err := detectContentType(f)
	if err != nil {
		return nil, fmt.Errorf("upload: failed to read %q: %w", opts.SourcePath, err)
	}

	req := NewRequest(opts.Bucket, opts.Prefix, opts.SourcePath, f, contentType, opts.Now())
	req.Size = info.Size()
	opts.Logger.Debug("uploading object",
		"id", req.ID,
		"bucket", req.Bucket,
		"key", req.ObjectName,
		"content_type", req.ContentType,
		"size", req.Size,
	)

	result, err := u.Upload(ctx, req)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("upload complete", "id", req.ID, "location", result.Location)
	return result, nil
}

// detectContentType sniffs the head of f and rewinds it.
func detectContentType(f *os.File) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mimetype.Detect(buf[:n]).String(), nil
}

func (o Options) withDefaults() Options {
	if o.SourcePath == "" {
		o.SourcePath = DefaultSourcePath
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
