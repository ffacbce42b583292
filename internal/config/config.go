package config

import (
	"fmt"
	"strings"

	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/receiptimage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Authz    AuthzConfig    `mapstructure:"authz"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	VerifyRateLimit RateLimitConfig `mapstructure:"verify_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// AuthzConfig 后台角色鉴权配置
// 说明：身份由上游网关认证后通过请求头透传，本服务只做路由级角色判定。
type AuthzConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	RoleHeader string `mapstructure:"role_header"`
	UserHeader string `mapstructure:"user_header"`
}

// StorageConfig 收据产物存储配置
type StorageConfig struct {
	Driver string             `mapstructure:"driver"` // local / gcs
	Local  LocalStorageConfig `mapstructure:"local"`
	GCS    GCSStorageConfig   `mapstructure:"gcs"`
}

// LocalStorageConfig 本地磁盘存储
type LocalStorageConfig struct {
	Root         string `mapstructure:"root"`
	PublicPrefix string `mapstructure:"public_prefix"`
}

// GCSStorageConfig Google Cloud Storage 存储
type GCSStorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// ReceiptConfig 收据配置
type ReceiptConfig struct {
	NumberRetry        int                       `mapstructure:"number_retry"`
	StrictLinkedEntity bool                      `mapstructure:"strict_linked_entity"`
	RenderCard         bool                      `mapstructure:"render_card"`
	QR                 ReceiptQRConfig           `mapstructure:"qr"`
	Layout             receiptimage.LayoutConfig `mapstructure:"layout"`
}

// ReceiptQRConfig 二维码配置
type ReceiptQRConfig struct {
	Backend       string `mapstructure:"backend"` // auto / vector / raster
	Size          int    `mapstructure:"size"`
	RecoveryLevel string `mapstructure:"recovery_level"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err == nil {
		logger.Infow("config_dotenv_loaded")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	cfg, err := decode(viper.GetViper())
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config decode failed: %w", err))
	}
	return cfg
}

// decode 以默认版式为底解码配置，版式只覆盖配置文件中出现的键
func decode(v *viper.Viper) (*Config, error) {
	cfg := Config{}
	cfg.Receipt.Layout = receiptimage.DefaultLayoutConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	// 字段列表整体替换，避免与默认列表逐项合并
	if v.IsSet("receipt.layout.fields") {
		var fields []receiptimage.FieldConfig
		if err := v.UnmarshalKey("receipt.layout.fields", &fields); err != nil {
			return nil, err
		}
		cfg.Receipt.Layout.Fields = fields
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/freight.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "11f")
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 4)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 1,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"X-Requested-With",
		"X-Request-ID",
	})
	viper.SetDefault("cors.allow_credentials", false)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.verify_rate_limit.window_seconds", 60)
	viper.SetDefault("security.verify_rate_limit.max_requests", 30)
	viper.SetDefault("authz.enabled", true)
	viper.SetDefault("authz.role_header", "X-Staff-Roles")
	viper.SetDefault("authz.user_header", "X-Staff-ID")
	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("storage.local.root", "./storage/public")
	viper.SetDefault("storage.local.public_prefix", "/storage")
	viper.SetDefault("storage.gcs.bucket", "")
	viper.SetDefault("storage.gcs.credentials_file", "")
	viper.SetDefault("storage.gcs.public_base_url", "")
	viper.SetDefault("receipt.number_retry", 3)
	viper.SetDefault("receipt.strict_linked_entity", false)
	viper.SetDefault("receipt.render_card", true)
	viper.SetDefault("receipt.qr.backend", "auto")
	viper.SetDefault("receipt.qr.size", 400)
	viper.SetDefault("receipt.qr.recovery_level", "medium")
}

// ToLayoutConfig 返回收据卡片版式
func (c ReceiptConfig) ToLayoutConfig() receiptimage.LayoutConfig {
	return c.Layout
}
