// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Storage     StorageConfig
	RabbitMQ    RabbitMQConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port          string
	Host          string
	ReadTimeout   int
	WriteTimeout  int
	IdleTimeout   int
	MaxUploadSize int64 // in bytes, whole multipart body
}

type DatabaseConfig struct {
	Driver       string // postgres, sqlite or mongodb
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
	SQLitePath   string
	MongoURI     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	Endpoint        string
	CloudFrontURL   string
}

type StorageConfig struct {
	Driver        string // s3 or local
	LocalDir      string
	PublicBaseURL string
	TempDir       string
	MaxFileSize   int64 // in bytes, per file
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	GeneralPerSecond int
	GeneralBurst     int
	UploadsPerMinute int
	UploadBurst      int
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Server: ServerConfig{
			Port:          v.GetString("SERVER_PORT"),
			Host:          v.GetString("SERVER_HOST"),
			ReadTimeout:   v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:  v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:   v.GetInt("SERVER_IDLE_TIMEOUT"),
			MaxUploadSize: v.GetInt64("SERVER_MAX_UPLOAD_SIZE"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Database:     v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxLifetime:  v.GetInt("DB_MAX_LIFETIME"),
			LogLevel:     v.GetString("DB_LOG_LEVEL"),
			SQLitePath:   v.GetString("SQLITE_PATH"),
			MongoURI:     v.GetString("MONGO_URI"),
		},
		JWT: JWTConfig{
			SecretKey:      v.GetString("JWT_SECRET"),
			AccessTokenTTL: v.GetInt("JWT_ACCESS_TTL"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("AWS_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			S3Bucket:        v.GetString("AWS_S3_BUCKET"),
			Endpoint:        v.GetString("AWS_S3_ENDPOINT"),
			CloudFrontURL:   v.GetString("AWS_CLOUDFRONT_URL"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
			LocalDir:      v.GetString("STORAGE_LOCAL_DIR"),
			PublicBaseURL: strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/"),
			TempDir:       v.GetString("UPLOAD_TMP_DIR"),
			MaxFileSize:   v.GetInt64("STORAGE_MAX_FILE_SIZE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: v.GetInt("RATE_LIMIT_GENERAL_PER_SECOND"),
			GeneralBurst:     v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			UploadsPerMinute: v.GetInt("RATE_LIMIT_UPLOADS_PER_MINUTE"),
			UploadBurst:      v.GetInt("RATE_LIMIT_UPLOAD_BURST"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		I18n: I18nConfig{
			DefaultLocale: v.GetString("DEFAULT_LOCALE"),
		},
	}

	// Storage falls back to local disk when no AWS credentials are configured
	if config.Storage.Driver == "" {
		if config.AWS.AccessKeyID != "" {
			config.Storage.Driver = "s3"
		} else {
			config.Storage.Driver = "local"
		}
	}

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)
	v.SetDefault("SERVER_MAX_UPLOAD_SIZE", 64<<20) // 64MB

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_MAX_LIFETIME", 300)
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("SQLITE_PATH", "catalog.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL", 24)

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_S3_BUCKET", "catalog-assets")

	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 10<<20) // 10MB

	v.SetDefault("RABBITMQ_QUEUE", "product_events")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("RATE_LIMIT_GENERAL_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 20)
	v.SetDefault("RATE_LIMIT_UPLOADS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT_UPLOAD_BURST", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("DEFAULT_LOCALE", "en")
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" && c.IsProduction() {
			return fmt.Errorf("database password is required in production")
		}
	case DriverSQLite, DriverMongoDB:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "s3":
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required for s3 storage")
		}
	case "local":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
