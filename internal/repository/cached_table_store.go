package repository

import (
	"context"
	"errors"
	"time"

	domrepo "XetraPull/internal/domain/repository"
	"XetraPull/pkg/cache"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/table"
	"XetraPull/pkg/util"
)

// CachedTableStore memoises List results for date partitions that can no
// longer change. A prefix is cacheable when it parses as a date strictly
// before today; every other call goes to the wrapped store.
type CachedTableStore struct {
	next      domrepo.TableStore
	cache     cache.Service
	namespace string
	ttl       time.Duration
	now       func() time.Time
	l         *applogger.Logger
}

// CachedStoreOption configures CachedTableStore.
type CachedStoreOption func(*CachedTableStore)

// WithListTTL sets how long a cached listing lives.
func WithListTTL(ttl time.Duration) CachedStoreOption {
	return func(s *CachedTableStore) {
		s.ttl = ttl
	}
}

// WithCacheClock replaces time.Now when deciding what today is.
func WithCacheClock(now func() time.Time) CachedStoreOption {
	return func(s *CachedTableStore) {
		s.now = now
	}
}

// NewCachedTableStore wraps next. namespace separates listings of
// different buckets sharing one cache.
func NewCachedTableStore(next domrepo.TableStore, c cache.Service, namespace string, l *applogger.Logger, opts ...CachedStoreOption) *CachedTableStore {
	if l == nil {
		l = applogger.Nop()
	}
	s := &CachedTableStore{
		next:      next,
		cache:     c,
		namespace: namespace,
		ttl:       7 * 24 * time.Hour,
		now:       time.Now,
		l:         l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CachedTableStore) List(ctx context.Context, prefix string) ([]string, error) {
	if !s.cacheable(prefix) {
		return s.next.List(ctx, prefix)
	}

	key := cache.GenerateKeyWithParams("list", s.namespace, prefix)
	var keys []string
	err := s.cache.Get(ctx, key, &keys)
	switch {
	case err == nil:
		s.l.Debug("listing served from cache", applogger.String("prefix", prefix), applogger.Int("keys", len(keys)))
		if keys == nil {
			keys = []string{}
		}
		return keys, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.l.Warn("listing cache read failed", applogger.String("prefix", prefix), applogger.Error(err))
	}

	keys, err = s.next.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, keys, s.ttl); err != nil {
		s.l.Warn("listing cache write failed", applogger.String("prefix", prefix), applogger.Error(err))
	}
	return keys, nil
}

func (s *CachedTableStore) ReadTable(ctx context.Context, key string) (*table.Frame, bool, error) {
	return s.next.ReadTable(ctx, key)
}

func (s *CachedTableStore) WriteTable(ctx context.Context, frame *table.Frame, key string, format domrepo.Format) (bool, error) {
	return s.next.WriteTable(ctx, frame, key, format)
}

func (s *CachedTableStore) cacheable(prefix string) bool {
	d, err := util.ParseDate(prefix)
	if err != nil {
		return false
	}
	return d.Before(util.DateOf(s.now()))
}
