package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethpandaops/uploadoor/pkg/config"
	"github.com/sirupsen/logrus"
)

// presigner generates pre-authorized PUT URLs. Satisfied by *s3.PresignClient.
type presigner interface {
	PresignPutObject(
		ctx context.Context,
		input *s3.PutObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// s3Uploader implements Uploader for S3-compatible storage. One instance is
// bound to a single bucket/key destination and reused across uploads.
type s3Uploader struct {
	log     logrus.FieldLogger
	cfg     *config.S3Config
	presign presigner
	httpc   *http.Client
	expiry  time.Duration

	// Single-slot handle for the most recently started upload. Overlapping
	// uploads keep running independently; only the latest is waitable.
	mu   sync.Mutex
	done chan struct{}
}

// Ensure interface compliance.
var _ Uploader = (*s3Uploader)(nil)

// NewS3Uploader creates a new S3 uploader from the given configuration.
// Credentials are not validated here; a misconfigured client fails on first
// use.
func NewS3Uploader(
	log logrus.FieldLogger,
	cfg *config.S3Config,
) (Uploader, error) {
	expiry := time.Hour

	if cfg.PresignExpiry != "" {
		d, err := time.ParseDuration(cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("parsing presign_expiry: %w", err)
		}

		expiry = d
	}

	client := newS3Client(cfg)

	return &s3Uploader{
		log:     log.WithField("component", "s3-uploader"),
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
		httpc:   http.DefaultClient,
		expiry:  expiry,
	}, nil
}

// newS3Client constructs an S3 client from the upload config.
func newS3Client(cfg *config.S3Config) *s3.Client {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.Region != "" {
				o.Region = cfg.Region
			} else {
				o.Region = "us-east-1"
			}

			if cfg.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.EndpointURL)
			}

			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}

			if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken,
				)
			}
		},
	}

	return s3.New(s3.Options{}, opts...)
}

// Preflight verifies S3 connectivity by pushing a small test object through
// the same presign-and-PUT path used by real uploads.
func (u *s3Uploader) Preflight(ctx context.Context) error {
	url, err := u.presignPutURL(ctx, ".uploadoor-write-test")
	if err != nil {
		return err
	}

	content := fmt.Sprintf("uploadoor write test: %s", time.Now().UTC().Format(time.RFC3339))

	if err := u.transfer(ctx, url, strings.NewReader(content), int64(len(content))); err != nil {
		return fmt.Errorf("writing test object to s3://%s: %w", u.cfg.Bucket, err)
	}

	return nil
}

// presignPutURL requests a time-limited pre-authorized PUT URL for key in
// the configured bucket.
func (u *s3Uploader) presignPutURL(ctx context.Context, key string) (string, error) {
	result, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning PUT URL for s3://%s/%s: %w", u.cfg.Bucket, key, err)
	}

	return result.URL, nil
}

// transfer streams body as an HTTP PUT to the presigned URL. Any non-2xx
// status is an error.
func (u *s3Uploader) transfer(ctx context.Context, url string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("building PUT request: %w", err)
	}

	req.ContentLength = size

	resp, err := u.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("PUT to presigned URL: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("PUT to presigned URL: unexpected status %s", resp.Status)
	}

	return nil
}
