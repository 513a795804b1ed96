// Package s3 mirrors harvested files into an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
)

// PutObjectAPI is the slice of the S3 client the sink needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client implements storage.ObjectSink for S3
type Client struct {
	api     PutObjectAPI
	bucket  string
	logger  types.Logger
	metrics types.Metrics
}

// NewClient builds an S3 sink from the export configuration. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies. A custom endpoint switches to path-style
// addressing.
func NewClient(ctx context.Context, cfg config.ExportConfig, timeout time.Duration, logger types.Logger, metrics types.Metrics) (*Client, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("invalid S3 configuration: bucket is required")
	}

	awsCfg, err := buildAWSConfig(ctx, cfg, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithAPI(api, cfg.S3Bucket, logger, metrics), nil
}

// NewWithAPI wraps an existing PutObject implementation
func NewWithAPI(api PutObjectAPI, bucket string, logger types.Logger, metrics types.Metrics) *Client {
	return &Client{
		api:     api,
		bucket:  bucket,
		logger:  logger.WithFields(types.Fields{"storage": "s3", "bucket": bucket}),
		metrics: metrics,
	}
}

// Put stores one object in the configured bucket
func (c *Client) Put(ctx context.Context, key string, reader io.Reader, metadata storage.ObjectMetadata) error {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("s3_put", time.Since(start).Seconds())
	}()

	// The SDK signs the payload, so it needs a seekable body
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, reader); err != nil {
		c.metrics.RecordError("s3_put", "read")
		return fmt.Errorf("failed to read content: %w", err)
	}

	contentType := metadata.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		c.metrics.RecordError("s3_put", "transport")
		c.logger.Error(ctx, "failed to put object", err, types.Fields{"key": key})
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	c.metrics.RecordSuccess("s3_put")
	c.logger.Debug(ctx, "object stored", types.Fields{"key": key, "size": buf.Len()})

	return nil
}

func buildAWSConfig(ctx context.Context, cfg config.ExportConfig, timeout time.Duration) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	if timeout > 0 {
		optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}
