package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/s3up/internal/config"
	"github.com/tomasbasham/s3up/internal/storage"
	"github.com/tomasbasham/s3up/internal/upload"
)

// UploaderFactory builds the storage backend for a loaded configuration.
type UploaderFactory func(ctx context.Context, cfg *config.Config) (storage.Uploader, error)

type UploadOptions struct {
	config      *config.Config
	newUploader UploaderFactory
	now         func() time.Time

	EnvFile     string
	SourcePath  string
	Prefix      string
	Backend     string
	Timeout     time.Duration
	FailOnError bool
	Verbose     bool

	iooption.IOStreams
}

var (
	uploadLong = templates.LongDesc(`
		Upload a single local file to the configured bucket.

		The object key is "<prefix>/<unix milliseconds>_<file name>". The upload
		is attempted once and never retried. Credentials and the bucket are read
		from AWS_ACCESS_KEY, AWS_SECRET_ACCESS_KEY and AWS_BUCKET, which may be
		set in a .env file.

		A failed upload is reported but still exits with status 0 unless
		--fail-on-error is given.`)

	uploadExample = templates.Examples(`
		# Upload ./data/file.txt using the settings in .env
		s3up upload

		# Upload a different file under a custom prefix
		s3up upload --file reports/q3.csv --prefix reports

		# Upload to a local directory instead of a bucket
		s3up upload --backend local`)
)

func NewUploadOptions(streams iooption.IOStreams) *UploadOptions {
	return &UploadOptions{
		newUploader: storage.New,
		now:         time.Now,
		IOStreams:   streams,
	}
}

func NewUploadCommand(o *UploadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "upload",
		DisableFlagsInUseLine: true,
		Short:                 "Upload a single file to object storage",
		Long:                  uploadLong,
		Example:               uploadExample,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(cmd.Context()); err != nil {
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&o.SourcePath, "file", "f", upload.DefaultSourcePath, "Local file to upload")
	flags.StringVarP(&o.Prefix, "prefix", "p", upload.DefaultPrefix, "Folder prefix for the object key")
	flags.StringVarP(&o.EnvFile, "env-file", "e", config.DefaultEnvFile, "Dotenv file to load before reading the environment")
	flags.StringVarP(&o.Backend, "backend", "b", "", "Storage backend: s3, gcs, minio or local (default: $STORAGE_BACKEND or s3)")
	flags.DurationVarP(&o.Timeout, "timeout", "t", 0, "Upload timeout (0 waits indefinitely)")
	flags.BoolVar(&o.FailOnError, "fail-on-error", false, "Exit with a non-zero status when the upload fails")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Log upload details to stderr")

	return cmd
}

func (o *UploadOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return err
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	o.config = cfg
	return nil
}

func (o *UploadOptions) Validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func (o *UploadOptions) Run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	location, err := o.upload(ctx)
	if err != nil {
		fmt.Fprintf(o.Out, "Error: %v\n", err)
		if o.FailOnError {
			return err
		}
		return nil
	}

	fmt.Fprintf(o.Out, "Uploaded to: %s\n", location)
	return nil
}

// upload performs the single upload attempt and reports its location.
func (o *UploadOptions) upload(ctx context.Context) (string, error) {
	uploader, err := o.newUploader(ctx, o.config)
	if err != nil {
		return "", err
	}

	result, err := upload.Run(ctx, uploader, upload.Options{
		Bucket:     o.config.Bucket,
		SourcePath: o.SourcePath,
		Prefix:     o.Prefix,
		Now:        o.now,
		Logger:     o.logger(),
	})
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

func (o *UploadOptions) logger() *slog.Logger {
	var w io.Writer = io.Discard
	if o.Verbose {
		w = o.ErrOut
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("backend", o.config.Backend)
}
