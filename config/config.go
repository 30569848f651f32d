package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config Application Configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Mail       MailConfig       `mapstructure:"mail"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
	Media      MediaConfig      `mapstructure:"media"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig Application Configuration
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// ServerConfig Server Configuration
type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	AdminRateLimit  RateLimitConfig `mapstructure:"admin_rate_limit"`
	AuthRateLimit   RateLimitConfig `mapstructure:"auth_rate_limit"`
}

// RateLimitConfig Rate Limiting Configuration
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`  // Requests per second
	Burst   int     `mapstructure:"burst"` // Burst capacity
}

// DatabaseConfig Database Configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // mysql, memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig Retry configuration for transactional work
type RetryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialDelay    time.Duration `mapstructure:"initial_delay"`
	MaxDelay        time.Duration `mapstructure:"max_delay"`
	BackoffFactor   float64       `mapstructure:"backoff_factor"`
	JitterEnabled   bool          `mapstructure:"jitter_enabled"`
	RetryOnDeadlock bool          `mapstructure:"retry_on_deadlock"`
	RetryOnTimeout  bool          `mapstructure:"retry_on_lock_timeout"`
	RetryOnConflict bool          `mapstructure:"retry_on_concurrent_modification"`
}

// LogConfig Log Configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig CORS Configuration
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// PaymentConfig Payment gateway configuration
type PaymentConfig struct {
	Provider string         `mapstructure:"provider"` // paystack, none
	Paystack PaystackConfig `mapstructure:"paystack"`
}

// PaystackConfig Paystack API configuration
type PaystackConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SecretKey   string        `mapstructure:"secret_key"`
	CallbackURL string        `mapstructure:"callback_url"`
	Currency    string        `mapstructure:"currency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RedisConfig Redis connection configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// AuthConfig Session and account configuration
type AuthConfig struct {
	Store                    string        `mapstructure:"store"` // redis, memory
	SessionPrefix            string        `mapstructure:"session_prefix"`
	SessionTTL               time.Duration `mapstructure:"session_ttl"`
	BcryptCost               int           `mapstructure:"bcrypt_cost"`
	LoginFloor               time.Duration `mapstructure:"login_floor"`
	RequireEmailVerification bool          `mapstructure:"require_email_verification"`
	AdminSignupKey           string        `mapstructure:"admin_signup_key"`
	CookieDomain             string        `mapstructure:"cookie_domain"`
}

// MailConfig SMTP configuration
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	BaseURL  string `mapstructure:"base_url"` // public API root used in mailed links
}

// NewsletterConfig Newsletter batching configuration
type NewsletterConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
}

// MediaConfig Product image storage configuration
type MediaConfig struct {
	RootDir       string `mapstructure:"root_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxImages     int    `mapstructure:"max_images"`
}

// KafkaConfig Outbox publishing configuration
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// WorkerConfig Outbox worker configuration
type WorkerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MetricsConfig Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment Whether it's development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction Whether it's production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// UsesMySQL Whether the MySQL persistence layer is selected
func (c *Config) UsesMySQL() bool {
	return c.Database.Type == "mysql"
}

// Load Load Configuration
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configuration file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read environment variables
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Use default values when config file doesn't exist
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setDefaults Set default configuration
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)
	v.SetDefault("server.admin_rate_limit.enabled", true)
	v.SetDefault("server.admin_rate_limit.rate", 0.2)
	v.SetDefault("server.admin_rate_limit.burst", 20)
	v.SetDefault("server.auth_rate_limit.enabled", true)
	v.SetDefault("server.auth_rate_limit.rate", 0.1)
	v.SetDefault("server.auth_rate_limit.burst", 10)

	// Database
	v.SetDefault("database.type", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "storefront")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("database.retry.enabled", true)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_delay", "100ms")
	v.SetDefault("database.retry.max_delay", "2s")
	v.SetDefault("database.retry.backoff_factor", 2.0)
	v.SetDefault("database.retry.jitter_enabled", true)
	v.SetDefault("database.retry.retry_on_deadlock", true)
	v.SetDefault("database.retry.retry_on_lock_timeout", true)
	v.SetDefault("database.retry.retry_on_concurrent_modification", true)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	// CORS
	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)

	// Payment
	v.SetDefault("payment.provider", "paystack")
	v.SetDefault("payment.paystack.base_url", "https://api.paystack.co")
	v.SetDefault("payment.paystack.callback_url", "http://localhost:5173/order-success")
	v.SetDefault("payment.paystack.currency", "NGN")
	v.SetDefault("payment.paystack.timeout", "15s")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "30s")

	// Auth
	v.SetDefault("auth.store", "memory")
	v.SetDefault("auth.session_prefix", "session:")
	v.SetDefault("auth.session_ttl", "2h")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.login_floor", "500ms")
	v.SetDefault("auth.require_email_verification", true)

	// Mail
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "Storefront Newsletter <newsletter@localhost>")
	v.SetDefault("mail.base_url", "http://localhost:8080/api/v1")

	// Newsletter
	v.SetDefault("newsletter.batch_size", 50)
	v.SetDefault("newsletter.batch_delay", "1s")

	// Media
	v.SetDefault("media.root_dir", "uploads")
	v.SetDefault("media.public_base_url", "http://localhost:8080/media")
	v.SetDefault("media.max_images", 3)

	// Kafka
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "storefront.events")

	// Worker
	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.poll_interval", "2s")
	v.SetDefault("worker.batch_size", 100)
	v.SetDefault("worker.max_retries", 5)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
