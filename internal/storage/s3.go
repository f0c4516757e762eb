package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config locates an S3-compatible bucket
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Enabled reports whether enough is configured to upload
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Client uploads export artifacts to a bucket
type Client struct {
	mc     *minio.Client
	config Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{mc: mc, config: cfg, logger: logger}, nil
}

// EnsureBucket creates the bucket if it does not exist
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.config.Bucket, err)
	}
	if exists {
		return nil
	}
	region := c.config.Region
	if region == "" {
		region = "us-east-1"
	}
	if err := c.mc.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.config.Bucket, err)
	}
	c.logger.Info("s3 bucket created", "bucket", c.config.Bucket)
	return nil
}

// Upload stores the file at path under key and returns the object location
func (c *Client) Upload(ctx context.Context, key, path, contentType string) (string, error) {
	info, err := c.mc.FPutObject(ctx, c.config.Bucket, key, path, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	c.logger.Info("artifact uploaded", "bucket", info.Bucket, "key", info.Key, "size", info.Size)
	return fmt.Sprintf("s3://%s/%s", info.Bucket, info.Key), nil
}

// Healthy checks the endpoint answers
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.mc.ListBuckets(ctx)
	return err
}
