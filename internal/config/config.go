package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Media providers
const (
	MediaCloudinary = "cloudinary"
	MediaOSS        = "oss"
	MediaLocal      = "local"
)

// placeholderJWTSecret is the value shipped in configs/config.yaml
const (
	placeholderJWTSecret   = "change-me"
	minProductionSecretLen = 32
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins  []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
		ReadTimeout     string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		MaxUploadMB     int64    `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"`

		MongoURI     string `yaml:"mongo_uri" env:"MONGO_URL"`
		MongoDB      string `yaml:"mongo_db" env:"MONGO_DB"`
		QueryTimeout string `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT"`

		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Media struct {
		Provider     string `yaml:"provider" env:"MEDIA_PROVIDER"`
		MaxDimension int    `yaml:"max_dimension" env:"MEDIA_MAX_DIMENSION"`
		JPEGQuality  int    `yaml:"jpeg_quality" env:"MEDIA_JPEG_QUALITY"`

		Cloudinary struct {
			CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
			APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
			APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
		} `yaml:"cloudinary"`

		OSS struct {
			Endpoint      string `yaml:"endpoint" env:"OSS_ENDPOINT"`
			AccessKeyID   string `yaml:"access_key_id" env:"OSS_ACCESS_KEY_ID"`
			AccessSecret  string `yaml:"access_key_secret" env:"OSS_ACCESS_KEY_SECRET"`
			Bucket        string `yaml:"bucket" env:"OSS_BUCKET"`
			PublicBaseURL string `yaml:"public_base_url" env:"OSS_PUBLIC_BASE_URL"`
		} `yaml:"oss"`

		Local struct {
			StoragePath string `yaml:"storage_path" env:"MEDIA_STORAGE_PATH"`
			BaseURL     string `yaml:"base_url" env:"MEDIA_BASE_URL"`
		} `yaml:"local"`
	} `yaml:"media"`

	PDF struct {
		ChromePath       string `yaml:"chrome_path" env:"PDF_CHROME_PATH"`
		Timeout          string `yaml:"timeout" env:"PDF_TIMEOUT"`
		SchoolName       string `yaml:"school_name" env:"PDF_SCHOOL_NAME"`
		PlaceholderPhoto string `yaml:"placeholder_photo" env:"PDF_PLACEHOLDER_PHOTO"`
	} `yaml:"pdf"`

	Cache struct {
		RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
		TTL           string `yaml:"ttl" env:"CACHE_TTL"`
	} `yaml:"cache"`

	Scheduler struct {
		Enabled       bool   `yaml:"enabled" env:"SCHEDULER_ENABLED"`
		PromotionSpec string `yaml:"promotion_spec" env:"SCHEDULER_PROMOTION_SPEC"`
	} `yaml:"scheduler"`

	Seed struct {
		Users           []string `yaml:"users" env:"SEED_USERS"`
		DefaultPassword string   `yaml:"default_password" env:"SEED_DEFAULT_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "3001"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"http://localhost:5173", "https://sv-pddu.vercel.app"}
	config.Server.ReadTimeout = "30s"
	config.Server.WriteTimeout = "60s"
	config.Server.ShutdownTimeout = "10s"
	config.Server.MaxUploadMB = 20

	config.Database.Driver = DriverMongo
	config.Database.MongoURI = "mongodb://localhost:27017"
	config.Database.MongoDB = "students"
	config.Database.QueryTimeout = "10s"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "students"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "studentrecords"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Media.Provider = MediaCloudinary
	config.Media.MaxDimension = 1200
	config.Media.JPEGQuality = 85
	config.Media.Local.StoragePath = "uploads"

	config.PDF.Timeout = "30s"
	config.PDF.SchoolName = "Sarvodaya Vidyalaya"
	config.PDF.PlaceholderPhoto = "https://res.cloudinary.com/dlhauofrz/image/upload/v1767507804/blue-circle-with-white-user_78370-4707_om7kmv.jpg"

	config.Cache.TTL = "5m"

	config.Scheduler.PromotionSpec = "0 0 1 4 *"

	config.Seed.Users = []string{"student@example.com", "teacher@example.com"}
	config.Seed.DefaultPassword = "password123"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMongo:
		if config.Database.MongoURI == "" {
			return fmt.Errorf("mongo connection string is required")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.IsProduction() {
		if config.JWT.Secret == placeholderJWTSecret || len(config.JWT.Secret) < minProductionSecretLen {
			return fmt.Errorf("JWT secret must be replaced with at least %d random bytes in production", minProductionSecretLen)
		}
	}

	switch config.Media.Provider {
	case MediaCloudinary:
		c := config.Media.Cloudinary
		if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
			return fmt.Errorf("cloudinary credentials are required for media provider %q", MediaCloudinary)
		}
	case MediaOSS:
		o := config.Media.OSS
		if o.Endpoint == "" || o.Bucket == "" || o.AccessKeyID == "" || o.AccessSecret == "" {
			return fmt.Errorf("oss endpoint, bucket and credentials are required for media provider %q", MediaOSS)
		}
	case MediaLocal:
		if config.Media.Local.StoragePath == "" {
			return fmt.Errorf("media storage path is required")
		}
	default:
		return fmt.Errorf("unsupported media provider %q", config.Media.Provider)
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
		"database query timeout":      config.Database.QueryTimeout,
		"pdf timeout":                 config.PDF.Timeout,
		"cache ttl":                   config.Cache.TTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
