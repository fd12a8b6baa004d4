package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in     string
		host   string
		secure bool
	}{
		{"https://s3.eu-central-1.amazonaws.com", "s3.eu-central-1.amazonaws.com", true},
		{"http://localhost:9000", "localhost:9000", false},
		{"minio.internal:9000", "minio.internal:9000", true},
	}
	for _, c := range cases {
		host, secure, err := splitEndpoint(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.host, host, c.in)
		assert.Equal(t, c.secure, secure, c.in)
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), WithEndpoint("http://localhost:9000"))
	require.Error(t, err)
}

func TestNewClientURL(t *testing.T) {
	c, err := NewClient(context.Background(),
		WithEndpoint("http://localhost:9000"),
		WithBucket("xetra-1234"),
		WithCredentials("ak", "sk"),
	)
	require.NoError(t, err)
	assert.Equal(t, "xetra-1234", c.Bucket())
	assert.Equal(t, "http://localhost:9000/xetra-1234/meta_file.csv", c.URL("meta_file.csv"))
}

func TestWrapErrNotFound(t *testing.T) {
	c := &Client{bucket: "b"}
	err := c.wrapErr("get", "k", minio.ErrorResponse{Code: "NoSuchKey"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = c.wrapErr("get", "k", minio.ErrorResponse{Code: "AccessDenied"})
	assert.False(t, errors.Is(err, ErrNotFound))
}
