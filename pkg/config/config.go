package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"XetraPull/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Logging     LoggingConfig    `yaml:"logging"`
	S3          S3Config         `yaml:"s3"`
	Source      SourceConfig     `yaml:"source"`
	Target      TargetConfig     `yaml:"target"`
	Meta        MetaConfig       `yaml:"meta"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Cache       CacheConfig      `yaml:"cache"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stdout"`
	TimeFormat string `yaml:"time_format"`
}

type S3Config struct {
	AccessKeyEnv   string        `yaml:"access_key_env" default:"AWS_ACCESS_KEY_ID"`
	SecretKeyEnv   string        `yaml:"secret_key_env" default:"AWS_SECRET_ACCESS_KEY"`
	Region         string        `yaml:"region"`
	SrcEndpointURL string        `yaml:"src_endpoint_url" validate:"required,url"`
	SrcBucket      string        `yaml:"src_bucket" validate:"required"`
	TrgEndpointURL string        `yaml:"trg_endpoint_url" validate:"required,url"`
	TrgBucket      string        `yaml:"trg_bucket" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`

	// Resolved from the environment variables named above.
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// SourceConfig names the raw trade columns and the first date to extract.
type SourceConfig struct {
	FirstExtractDate string   `yaml:"first_extract_date" validate:"required,datetime=2006-01-02"`
	Columns          []string `yaml:"columns" validate:"required,min=1,dive,required"`
	ColISIN          string   `yaml:"col_isin" default:"ISIN" validate:"required"`
	ColDate          string   `yaml:"col_date" default:"Date" validate:"required"`
	ColTime          string   `yaml:"col_time" default:"Time" validate:"required"`
	ColStartPrice    string   `yaml:"col_start_price" default:"StartPrice" validate:"required"`
	ColMinPrice      string   `yaml:"col_min_price" default:"MinPrice" validate:"required"`
	ColMaxPrice      string   `yaml:"col_max_price" default:"MaxPrice" validate:"required"`
	ColTradedVol     string   `yaml:"col_traded_vol" default:"TradedVolume" validate:"required"`
	ReadConcurrency  int      `yaml:"read_concurrency" default:"8" validate:"gte=1"`
}

// TargetConfig names the report columns and where the report is written.
type TargetConfig struct {
	ColISIN        string `yaml:"col_isin" default:"isin" validate:"required"`
	ColDate        string `yaml:"col_date" default:"date" validate:"required"`
	ColOpPrice     string `yaml:"col_op_price" default:"opening_price_eur" validate:"required"`
	ColClosPrice   string `yaml:"col_clos_price" default:"closing_price_eur" validate:"required"`
	ColMinPrice    string `yaml:"col_min_price" default:"minimum_price_eur" validate:"required"`
	ColMaxPrice    string `yaml:"col_max_price" default:"maximum_price_eur" validate:"required"`
	ColDailTradVol string `yaml:"col_dail_trad_vol" default:"daily_traded_volume" validate:"required"`
	ColChPrevClos  string `yaml:"col_ch_prev_clos" default:"change_prev_closing_%" validate:"required"`
	Key            string `yaml:"key" default:"report1/xetra_daily_report1_" validate:"required"`
	KeyDateFormat  string `yaml:"key_date_format" default:"20060102_150405" validate:"required"`
	Format         string `yaml:"format" default:"parquet" validate:"oneof=csv parquet"`
}

type MetaConfig struct {
	Key string `yaml:"key" default:"meta_file.csv" validate:"required"`
}

type MetricsConfig struct {
	PushgatewayURL string        `yaml:"pushgateway_url" validate:"omitempty,url"`
	JobName        string        `yaml:"job_name" default:"xetra_report" validate:"required"`
	PushTimeout    time.Duration `yaml:"push_timeout" default:"10s"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Type    string        `yaml:"type" default:"memory" validate:"oneof=memory redis layered"`
	TTL     time.Duration `yaml:"ttl" default:"168h"`
	MaxSize int           `yaml:"max_size" default:"1000" validate:"gte=1"`
	Redis   struct {
		Addr         string        `yaml:"addr" default:"localhost:6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix" default:"xetrapull"`
		PoolSize     int           `yaml:"pool_size" default:"10" validate:"gte=1"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"1" validate:"gte=0"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
	} `yaml:"redis"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" validate:"required_if=Enabled true"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"xetra"`
	Table            string        `yaml:"table" default:"daily_report"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	PingTimeout      time.Duration `yaml:"ping_timeout" default:"5s"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic        string   `yaml:"topic" default:"xetra.report.runs"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		BatchSize    int           `yaml:"batch_size" default:"100" validate:"gte=1"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576" validate:"gte=1"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	return load(path, true)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	c.resolveCredentials()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string, withEnv bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	if withEnv {
		c.applyEnv()
	}
	c.resolveCredentials()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("XETRA_FIRST_EXTRACT_DATE"); v != "" {
		c.Source.FirstExtractDate = v
	}
	if v := os.Getenv("S3_SRC_BUCKET"); v != "" {
		c.S3.SrcBucket = v
	}
	if v := os.Getenv("S3_TRG_BUCKET"); v != "" {
		c.S3.TrgBucket = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

func (c *Config) resolveCredentials() {
	if c.S3.AccessKeyEnv != "" {
		c.S3.AccessKey = os.Getenv(c.S3.AccessKeyEnv)
	}
	if c.S3.SecretKeyEnv != "" {
		c.S3.SecretKey = os.Getenv(c.S3.SecretKeyEnv)
	}
}
