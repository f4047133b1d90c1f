// Package config loads the uploader configuration from the environment,
// optionally seeded from a .env file. The result is a plain struct built once
// at process start and passed to whatever needs it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read when no other path is given.
const DefaultEnvFile = ".env"

// Backend names accepted in STORAGE_BACKEND.
const (
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendMinio = "minio"
	BackendLocal = "local"
)

type Config struct {
	// Backend selects the storage implementation. Defaults to "s3".
	Backend string

	AccessKey string
	SecretKey string
	Bucket    string
	Region    string

	// Endpoint overrides the S3 endpoint for S3-compatible services such as
	// LocalStack. Path-style addressing is used when it is set.
	Endpoint string

	MinioEndpoint string
	MinioUseSSL   bool

	// GCSCredentialsFile points at a service account key. When empty the
	// application default credentials are used.
	GCSCredentialsFile string

	// LocalDir is the root directory for the local backend.
	LocalDir string
}

// Load reads path into the process environment and builds a Config from it.
// A missing file is not an error; variables already present in the
// environment take precedence over the file.
//
// Values are not validated here. An empty bucket or credential surfaces as an
// error from the storage backend when the upload is attempted.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load %q: %w", path, err)
	}

	useSSL, err := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid MINIO_USE_SSL: %w", err)
	}

	return &Config{
		Backend: getEnv("STORAGE_BACKEND", BackendS3),

		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Bucket:    os.Getenv("AWS_BUCKET"),
		Region:    getEnv("AWS_REGION", "us-east-1"),
		Endpoint:  os.Getenv("AWS_ENDPOINT_URL"),

		MinioEndpoint: getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioUseSSL:   useSSL,

		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		LocalDir:           getEnv("LOCAL_STORAGE_DIR", "uploads"),
	}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
