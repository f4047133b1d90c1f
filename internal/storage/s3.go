package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/tomasbasham/s3up/internal/config"
)

// PutObjectAPI is the slice of the S3 client used by S3Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ PutObjectAPI = (*s3.Client)(nil)

// S3Uploader uploads objects to an S3 bucket with a single PutObject call.
type S3Uploader struct {
	client   PutObjectAPI
	region   string
	endpoint string
}

// NewS3Uploader creates an S3Uploader from cfg. Static credentials are used
// when an access key is configured; otherwise the default AWS credential
// chain applies. The SDK's retryer is limited to a single attempt.
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3UploaderWithClient(client, cfg.Region, cfg.Endpoint), nil
}

// NewS3UploaderWithClient creates an S3Uploader around an existing client.
// endpoint is only used to compute object locations and may be empty.
func NewS3UploaderWithClient(client PutObjectAPI, region, endpoint string) *S3Uploader {
	return &S3Uploader{client: client, region: region, endpoint: endpoint}
}

// Upload writes the request content to S3 and returns the object URL.
func (u *S3Uploader) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(req.Bucket),
		Key:      aws.String(req.ObjectName),
		Body:     req.Content,
		Metadata: req.metadata(),
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}
	if req.Size >= 0 {
		input.ContentLength = aws.Int64(req.Size)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("storage: put object %q failed (%s): %w", req.ObjectName, apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("storage: put object %q failed: %w", req.ObjectName, err)
	}

	return &UploadResult{
		ObjectName: req.ObjectName,
		Location:   u.location(req.Bucket, req.ObjectName),
	}, nil
}

// location mirrors the address S3 reports for a stored object: virtual-hosted
// style against AWS, path style against a custom endpoint.
func (u *S3Uploader) location(bucket, key string) string {
	if u.endpoint != "" {
		base, err := url.Parse(strings.TrimSuffix(u.endpoint, "/"))
		if err == nil && base.Host != "" {
			return base.JoinPath(bucket, key).String()
		}
	}
	loc := &url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, u.region),
		Path:   "/" + key,
	}
	return loc.String()
}
