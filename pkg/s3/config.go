package s3

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds S3 connection settings for one bucket.
type ClientConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	RequestTimeout time.Duration
	CheckBucket    bool
}

// WithEndpoint sets the endpoint URL, e.g. https://s3.eu-central-1.amazonaws.com.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithRegion sets the bucket region.
func WithRegion(region string) ClientOption {
	return func(c *ClientConfig) {
		c.Region = region
	}
}

// WithBucket sets the bucket every call operates on.
func WithBucket(bucket string) ClientOption {
	return func(c *ClientConfig) {
		c.Bucket = bucket
	}
}

// WithCredentials sets static access and secret keys.
func WithCredentials(accessKey, secretKey string) ClientOption {
	return func(c *ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithRequestTimeout bounds a single object request.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RequestTimeout = d
	}
}

// WithBucketCheck makes NewClient verify that the bucket exists.
func WithBucketCheck(check bool) ClientOption {
	return func(c *ClientConfig) {
		c.CheckBucket = check
	}
}
