package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	domrepo "XetraPull/internal/domain/repository"
	applogger "XetraPull/pkg/logger"
	pkgs3 "XetraPull/pkg/s3"
	"XetraPull/pkg/table"
)

// ObjectClient is the subset of object storage the table store needs.
// *pkgs3.Client satisfies it.
type ObjectClient interface {
	Bucket() string
	URL(key string) string
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// S3TableStore implements TableStore on top of an object bucket.
type S3TableStore struct {
	objects ObjectClient
	l       *applogger.Logger
}

// NewS3TableStore creates a table store for one bucket.
func NewS3TableStore(objects ObjectClient, l *applogger.Logger) *S3TableStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &S3TableStore{
		objects: objects,
		l:       l.With(applogger.String("bucket", objects.Bucket())),
	}
}

// Bucket returns the bucket name of the underlying client.
func (s *S3TableStore) Bucket() string {
	return s.objects.Bucket()
}

func (s *S3TableStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.objects.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return keys, nil
}

func (s *S3TableStore) ReadTable(ctx context.Context, key string) (*table.Frame, bool, error) {
	s.l.Info("Reading file", applogger.String("url", s.objects.URL(key)))

	data, err := s.objects.Get(ctx, key)
	if errors.Is(err, pkgs3.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read table %s: %w", key, err)
	}

	frame, err := table.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, true, fmt.Errorf("decode table %s: %w", key, err)
	}
	return frame, true, nil
}

func (s *S3TableStore) WriteTable(ctx context.Context, frame *table.Frame, key string, format domrepo.Format) (bool, error) {
	if frame.Empty() {
		s.l.Info("The dataframe is empty! No file will be written!", applogger.String("key", key))
		return false, nil
	}

	data, err := encodeTable(frame, format)
	if err != nil {
		return false, err
	}

	s.l.Info("Writing file",
		applogger.String("url", s.objects.URL(key)),
		applogger.String("format", string(format)),
		applogger.Int("rows", frame.Len()),
	)
	if err := s.objects.Put(ctx, key, data, format.ContentType()); err != nil {
		return false, fmt.Errorf("write table %s: %w", key, err)
	}
	return true, nil
}

func encodeTable(frame *table.Frame, format domrepo.Format) ([]byte, error) {
	switch format {
	case domrepo.FormatCSV:
		return table.EncodeCSV(frame)
	case domrepo.FormatParquet:
		return table.EncodeParquet(frame)
	default:
		return nil, fmt.Errorf("the file format %s is not supported to be written to s3: %w", format, domrepo.ErrWrongFormat)
	}
}
