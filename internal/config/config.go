package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

// Config holds the full server configuration, loaded from environment
// variables (a .env file is loaded first when present).
type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     string `envconfig:"DB_PORT" required:"true"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	JWTSecret          string `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTExpirationHours int64  `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`

	// First registration with this phone number becomes the admin account.
	InitialAdminPhone string `envconfig:"INITIAL_ADMIN_PHONE"`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"disk"`
	UploadsDir     string `envconfig:"UPLOADS_DIR" default:"uploads"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageBackend != StorageDisk && cfg.StorageBackend != StorageS3 {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q, must be %q or %q", cfg.StorageBackend, StorageDisk, StorageS3)
	}
	if cfg.StorageBackend == StorageS3 && (cfg.S3Endpoint == "" || cfg.S3Bucket == "") {
		return nil, fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required when STORAGE_BACKEND=s3")
	}
	return &cfg, nil
}

// DSN builds the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
