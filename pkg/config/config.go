package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Etcd            EtcdConfig            `mapstructure:"etcd"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	GRPCServer      GRPCServerConfig      `mapstructure:"grpc_server"`
	Profiling       ProfilingConfig       `mapstructure:"profiling"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline"`
	Vendors         VendorsConfig         `mapstructure:"vendors"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	BootstrapServers     []string          `mapstructure:"bootstrap_servers"`
	ClientID             string            `mapstructure:"client_id"`
	GroupID              string            `mapstructure:"group_id"`
	Enabled              bool              `mapstructure:"enabled"`
	Topics               KafkaTopicsConfig `mapstructure:"topics"`
	// CommitOnProcessError 处理失败时跳过该消息；默认原地重试
	CommitOnProcessError bool              `mapstructure:"commit_on_process_error"`
}

// KafkaTopicsConfig topic names
type KafkaTopicsConfig struct {
	// MinIO bucket notifications (object created)
	ObjectEvents          string `mapstructure:"object_events"`
	UserLivestreamChanges string `mapstructure:"user_livestream_changes"`
	TranscriptionEvents   string `mapstructure:"transcription_events"`
}

// JWTConfig JWT配置，secret 为空时不校验
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// EtcdConfig etcd连接配置
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// GRPCServerConfig gRPC server configuration.
type GRPCServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ProfilingConfig pyroscope
type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
}

// PipelineConfig 转写/章节化流水线配置
type PipelineConfig struct {
	Transcription  TranscriptionConfig  `mapstructure:"transcription"`
	Chapterization ChapterizationConfig `mapstructure:"chapterization"`
	Batch          BatchConfig          `mapstructure:"batch"`
	Recording      RecordingConfig      `mapstructure:"recording"`
	Locks          LocksConfig          `mapstructure:"locks"`
}

// TranscriptionConfig 转写重试参数
type TranscriptionConfig struct {
	Provider      string        `mapstructure:"provider"`
	MaxRetries    int           `mapstructure:"max_retries"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	PreviewLength int           `mapstructure:"preview_length"`
	// 超过该时长未更新的进行中状态视为遗弃
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// ChapterizationConfig 章节化参数
type ChapterizationConfig struct {
	Provider   string `mapstructure:"provider"`
	MaxRetries int    `mapstructure:"max_retries"`
	ChunkSize  int    `mapstructure:"chunk_size"`
}

// BatchConfig 批量转写调度
type BatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Size     int           `mapstructure:"size"`
	MaxAge   time.Duration `mapstructure:"max_age"`
	Pacing   time.Duration `mapstructure:"pacing"`
}

// RecordingConfig 录像地址解析
type RecordingConfig struct {
	BucketName    string        `mapstructure:"bucket_name"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LocksConfig 单飞锁 TTL
type LocksConfig struct {
	TranscriptionTTL  time.Duration `mapstructure:"transcription_ttl"`
	ChapterizationTTL time.Duration `mapstructure:"chapterization_ttl"`
	BatchTTL          time.Duration `mapstructure:"batch_ttl"`
}

// VendorsConfig 第三方服务
type VendorsConfig struct {
	Deepgram  DeepgramConfig  `mapstructure:"deepgram"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

type DeepgramConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AnthropicConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Version   string        `mapstructure:"version"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("service_registry.enabled", false)
	v.SetDefault("service_registry.service_name", "livestream-pipeline")
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.client_id", "livestream-pipeline")
	v.SetDefault("kafka.group_id", "livestream-pipeline-group")
	v.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	v.SetDefault("kafka.topics.object_events", "minio.object-events")
	v.SetDefault("kafka.topics.user_livestream_changes", "user-livestream.changes")
	v.SetDefault("kafka.topics.transcription_events", "transcription.completed")
	v.SetDefault("pipeline.batch.enabled", true)

	// 设置环境变量前缀
	v.SetEnvPrefix("MEDIA_PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// Default 返回仅包含默认值的配置，供命令行工具与测试使用
func Default() *Config {
	c := &Config{}
	c.Pipeline.Batch.Enabled = true
	c.normalize()
	return c
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "livestreams"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8083
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	if c.GRPCServer.Host == "" {
		c.GRPCServer.Host = "0.0.0.0"
	}
	if c.GRPCServer.Port == 0 {
		c.GRPCServer.Port = 9092
	}
	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "livestream-pipeline"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
	if c.Etcd.DialTimeout == 0 {
		c.Etcd.DialTimeout = 5 * time.Second
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "livestream-pipeline"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "livestream-pipeline-group"
	}

	c.normalizePipeline()
	c.normalizeVendors()
}

func (c *Config) normalizePipeline() {
	t := &c.Pipeline.Transcription
	if t.Provider == "" {
		t.Provider = "deepgram"
	}
	if t.MaxRetries <= 0 {
		t.MaxRetries = 5
	}
	if t.BaseDelay <= 0 {
		t.BaseDelay = 3 * time.Minute
	}
	if t.MaxDelay <= 0 {
		t.MaxDelay = 20 * time.Minute
	}
	if t.PreviewLength <= 0 {
		t.PreviewLength = 500
	}
	if t.StaleAfter <= 0 {
		t.StaleAfter = 2 * time.Hour
	}

	ch := &c.Pipeline.Chapterization
	if ch.Provider == "" {
		ch.Provider = "claude"
	}
	if ch.MaxRetries <= 0 {
		ch.MaxRetries = 3
	}
	if ch.ChunkSize <= 0 {
		ch.ChunkSize = 20
	}

	b := &c.Pipeline.Batch
	if b.Interval <= 0 {
		b.Interval = time.Hour
	}
	if b.Size <= 0 {
		b.Size = 30
	}
	if b.MaxAge <= 0 {
		b.MaxAge = 2 * 365 * 24 * time.Hour
	}
	if b.Pacing <= 0 {
		b.Pacing = time.Minute
	}

	r := &c.Pipeline.Recording
	if r.BucketName == "" {
		r.BucketName = c.Minio.BucketName
	}
	if r.PresignExpiry <= 0 {
		r.PresignExpiry = 2 * time.Hour
	}

	l := &c.Pipeline.Locks
	if l.TranscriptionTTL <= 0 {
		l.TranscriptionTTL = 90 * time.Minute
	}
	if l.ChapterizationTTL <= 0 {
		l.ChapterizationTTL = 15 * time.Minute
	}
	if l.BatchTTL <= 0 {
		l.BatchTTL = 2 * time.Hour
	}
}

func (c *Config) normalizeVendors() {
	d := &c.Vendors.Deepgram
	if d.BaseURL == "" {
		d.BaseURL = "https://api.deepgram.com"
	}
	if d.Model == "" {
		d.Model = "nova-2"
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Minute
	}

	a := &c.Vendors.Anthropic
	if a.BaseURL == "" {
		a.BaseURL = "https://api.anthropic.com"
	}
	if a.Model == "" {
		a.Model = "claude-3-5-sonnet-latest"
	}
	if a.MaxTokens <= 0 {
		a.MaxTokens = 8192
	}
	if a.Version == "" {
		a.Version = "2023-06-01"
	}
	if a.Timeout <= 0 {
		a.Timeout = 5 * time.Minute
	}
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetMigrateURL golang-migrate 使用的 mysql 连接串
func (c *DatabaseConfig) GetMigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?multiStatements=true",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
