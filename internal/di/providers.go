package di

import (
	"context"
	"fmt"
	"io"
	"time"

	drepo "XetraPull/internal/domain/repository"
	internalrepo "XetraPull/internal/repository"
	"XetraPull/internal/usecase"
	"XetraPull/pkg/cache"
	pkgch "XetraPull/pkg/clickhouse"
	"XetraPull/pkg/config"
	pkgkafka "XetraPull/pkg/kafka"
	applogger "XetraPull/pkg/logger"
	"XetraPull/pkg/metrics"
	pkgs3 "XetraPull/pkg/s3"
	"XetraPull/pkg/server"
	"XetraPull/pkg/util"
)

// SourceStore is the table store over the raw Xetra bucket.
type SourceStore drepo.TableStore

// TargetStore is the table store over the report bucket.
type TargetStore drepo.TableStore

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache creates the listing cache. It returns nil when caching is
// disabled. The cleanup closes the cache.
func ProvideCache(ctx context.Context, cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	var c cache.Service
	switch cfg.Cache.Type {
	case "redis", "layered":
		redisCache, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.PoolTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		c = redisCache
		if cfg.Cache.Type == "layered" {
			c = cache.NewLayeredCache(redisCache, cache.WithLayeredMemorySize(cfg.Cache.MaxSize))
		}
	default:
		c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize))
	}

	return c, closeCleanup("cache", c, l), nil
}

// closeCleanup adapts an io.Closer to a wire cleanup function.
func closeCleanup(name string, c io.Closer, l *applogger.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			l.Warn(name+" close error", applogger.Error(err))
		}
	}
}

func newBucketClient(ctx context.Context, cfg *config.Config, endpoint, bucket string) (*pkgs3.Client, error) {
	client, err := pkgs3.NewClient(ctx,
		pkgs3.WithEndpoint(endpoint),
		pkgs3.WithRegion(cfg.S3.Region),
		pkgs3.WithBucket(bucket),
		pkgs3.WithCredentials(cfg.S3.AccessKey, cfg.S3.SecretKey),
		pkgs3.WithRequestTimeout(cfg.S3.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 client %s: %w", bucket, err)
	}
	return client, nil
}

// ProvideSourceStore creates the source bucket store. Listings of past
// dates go through the cache when one is configured.
func ProvideSourceStore(ctx context.Context, cfg *config.Config, c cache.Service, l *applogger.Logger) (SourceStore, error) {
	client, err := newBucketClient(ctx, cfg, cfg.S3.SrcEndpointURL, cfg.S3.SrcBucket)
	if err != nil {
		return nil, err
	}
	store := internalrepo.NewS3TableStore(client, l)
	if c == nil {
		return store, nil
	}
	return internalrepo.NewCachedTableStore(store, c, cfg.S3.SrcBucket, l,
		internalrepo.WithListTTL(cfg.Cache.TTL),
	), nil
}

// ProvideTargetStore creates the target bucket store.
func ProvideTargetStore(ctx context.Context, cfg *config.Config, l *applogger.Logger) (TargetStore, error) {
	client, err := newBucketClient(ctx, cfg, cfg.S3.TrgEndpointURL, cfg.S3.TrgBucket)
	if err != nil {
		return nil, err
	}
	return internalrepo.NewS3TableStore(client, l), nil
}

// ProvideClickHouseClient creates a ClickHouse client and the report
// table. It returns nil when the mirror is disabled. The cleanup closes the
// client.
func ProvideClickHouseClient(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithPingTimeout(cfg.ClickHouse.PingTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.InitSchema(sctx, internalrepo.ReportSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, closeCleanup("clickhouse", client, l), nil
}

// ProvideReportSink mirrors reports into ClickHouse when a client exists.
func ProvideReportSink(client *pkgch.Client, cfg *config.Config, l *applogger.Logger) drepo.ReportSink {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseReportSink(client.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table, l)
}

// ProvideKafkaProducer creates a Kafka producer. It returns nil when run
// events are disabled. The cleanup flushes and closes the producer.
func ProvideKafkaProducer(cfg *config.Config, rec *metrics.Recorder, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(rec.Registry()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, closeCleanup("kafka", producer, l), nil
}

// ProvideRunPublisher announces finished runs on Kafka when a producer exists.
func ProvideRunPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
}

// ProvideWatermark creates the watermark service over the target bucket.
func ProvideWatermark(trg TargetStore, cfg *config.Config, l *applogger.Logger) *usecase.WatermarkService {
	return usecase.NewWatermarkService(trg, cfg.Meta.Key, l)
}

// ProvideReportAggregator maps the configured column names.
func ProvideReportAggregator(cfg *config.Config, l *applogger.Logger) *usecase.ReportAggregator {
	src := usecase.SourceColumns{
		All:        cfg.Source.Columns,
		ISIN:       cfg.Source.ColISIN,
		Date:       cfg.Source.ColDate,
		Time:       cfg.Source.ColTime,
		StartPrice: cfg.Source.ColStartPrice,
		MinPrice:   cfg.Source.ColMinPrice,
		MaxPrice:   cfg.Source.ColMaxPrice,
		TradedVol:  cfg.Source.ColTradedVol,
	}
	trg := usecase.TargetColumns{
		ISIN:              cfg.Target.ColISIN,
		Date:              cfg.Target.ColDate,
		OpeningPrice:      cfg.Target.ColOpPrice,
		ClosingPrice:      cfg.Target.ColClosPrice,
		MinimumPrice:      cfg.Target.ColMinPrice,
		MaximumPrice:      cfg.Target.ColMaxPrice,
		DailyTradedVolume: cfg.Target.ColDailTradVol,
		ChangePrevClosing: cfg.Target.ColChPrevClos,
	}
	return usecase.NewReportAggregator(src, trg, l)
}

// ProvideReportETL resolves the extraction window and builds the job.
func ProvideReportETL(
	ctx context.Context,
	cfg *config.Config,
	src SourceStore,
	trg TargetStore,
	watermark *usecase.WatermarkService,
	aggregator *usecase.ReportAggregator,
	sink drepo.ReportSink,
	publisher drepo.RunPublisher,
	rec *metrics.Recorder,
	l *applogger.Logger,
) (*usecase.ReportETL, error) {
	firstDate, err := util.ParseDate(cfg.Source.FirstExtractDate)
	if err != nil {
		return nil, fmt.Errorf("first extract date: %w", err)
	}
	format, err := drepo.ParseFormat(cfg.Target.Format)
	if err != nil {
		return nil, err
	}

	opts := []usecase.ETLOption{
		usecase.WithMetrics(rec),
		usecase.WithReadConcurrency(cfg.Source.ReadConcurrency),
	}
	if sink != nil {
		opts = append(opts, usecase.WithReportSink(sink))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithRunPublisher(publisher))
	}

	return usecase.NewReportETL(ctx, src, trg, watermark, aggregator,
		usecase.ReportTarget{
			Key:           cfg.Target.Key,
			KeyDateFormat: cfg.Target.KeyDateFormat,
			Format:        format,
		},
		firstDate, l, opts...)
}

// ProvideApp creates the batch application. Client cleanup is returned by
// InitializeApp, not owned by the App.
func ProvideApp(cfg *config.Config, etl *usecase.ReportETL, rec *metrics.Recorder, l *applogger.Logger) *server.App {
	return server.New(cfg, etl, rec, l)
}
