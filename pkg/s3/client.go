// Package s3 is a small bucket-scoped wrapper over minio-go.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("s3: object not found")

// Client reads and writes objects of a single bucket.
type Client struct {
	mc       *minio.Client
	bucket   string
	endpoint string
	timeout  time.Duration
}

// NewClient creates a bucket-scoped client.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		Endpoint:       "https://s3.amazonaws.com",
		RequestTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	c := &Client{mc: mc, bucket: cfg.Bucket, endpoint: cfg.Endpoint, timeout: cfg.RequestTimeout}

	if cfg.CheckBucket {
		cctx, cancel := c.withTimeout(ctx)
		defer cancel()
		ok, err := mc.BucketExists(cctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("s3 bucket check: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("s3 bucket %q does not exist", cfg.Bucket)
		}
	}

	return c, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// URL renders the object location for logs.
func (c *Client) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
}

// ListKeys returns every key starting with prefix.
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("s3 list %q: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Get downloads an object. A missing key yields ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	obj, err := c.mc.GetObject(cctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrapErr("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, c.wrapErr("read", key, err)
	}
	return data, nil
}

// Put uploads an object, replacing any previous version.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	cctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.mc.PutObject(cctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return c.wrapErr("put", key, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) wrapErr(op, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("s3 %s %s: %w", op, key, ErrNotFound)
	}
	return fmt.Errorf("s3 %s %s: %w", op, key, err)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func splitEndpoint(endpoint string) (string, bool, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("s3 endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		// bare host:port
		return endpoint, true, nil
	}
	return u.Host, u.Scheme != "http", nil
}
