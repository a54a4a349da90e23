package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Schema    SchemaConfig    `mapstructure:"schema"`
	History   HistoryConfig   `mapstructure:"history"`

	// 配置文件所在目录，热更新时使用
	Path string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAgeSeconds  int      `mapstructure:"max_age_seconds"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// BackendConfig 题库/答案的来源：诊所后端接口或本地 MySQL
type BackendConfig struct {
	Mode           string `mapstructure:"mode"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SessionConfig struct {
	MaxActive            int `mapstructure:"max_active"`
	LoadTimeoutSeconds   int `mapstructure:"load_timeout_seconds"`
	SubmitTimeoutSeconds int `mapstructure:"submit_timeout_seconds"`
}

type SchemaConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

type RangeConfig struct {
	Key   string `mapstructure:"key"`
	Title string `mapstructure:"title"`
	Min   int    `mapstructure:"min"`
	Max   int    `mapstructure:"max"`
}

// HistoryConfig 区间表名 -> 区间列表，覆盖内置默认值
type HistoryConfig struct {
	Ranges map[string][]RangeConfig `mapstructure:"ranges"`
}

// MaxAge 预检结果缓存秒数
func (c CORSConfig) MaxAge() int {
	return int(seconds(c.MaxAgeSeconds, 600) / time.Second)
}

func (c RateLimitConfig) Window() time.Duration {
	if c.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}

func (c BackendConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds, 15)
}

func (c SessionConfig) LoadTimeout() time.Duration {
	return seconds(c.LoadTimeoutSeconds, 30)
}

func (c SessionConfig) SubmitTimeout() time.Duration {
	return seconds(c.SubmitTimeoutSeconds, 30)
}

func (c SchemaConfig) CacheTTL() time.Duration {
	return seconds(c.CacheTTLSeconds, 600)
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PUSPA")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("backend.mode", BackendRemote)
	v.SetDefault("session.max_active", 1000)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Backend
	v.BindEnv("backend.mode", "BACKEND_MODE")
	v.BindEnv("backend.base_url", "BACKEND_BASE_URL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	switch cfg.Backend.Mode {
	case BackendRemote:
		if cfg.Backend.BaseURL == "" {
			return nil, fmt.Errorf("backend.base_url is required in %s mode", BackendRemote)
		}
	case BackendLocal:
	default:
		return nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
	}

	return &cfg, nil
}
