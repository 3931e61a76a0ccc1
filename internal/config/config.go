package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBatchSize = 5
	DefaultCacheTTL  = time.Hour
)

var (
	errEmptyDBHost      = errors.New("postgres host is required")
	errEmptyDBName      = errors.New("postgres database is required")
	errEmptyBucket      = errors.New("s3 bucket is required")
	errEmptyEndpoint    = errors.New("s3 endpoint is required")
	errInvalidBatchSize = errors.New("feed batch size must be > 0")
)

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

func (c DBConfig) Validate() error {
	if c.Host == "" {
		return errEmptyDBHost
	}
	if c.DBName == "" {
		return errEmptyDBName
	}
	return nil
}

// DSN renders the config as a postgres:// connection string.
func (c DBConfig) DSN() string {
	port := c.Port
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, port),
		Path:   "/" + c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}

	return u.String()
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return errEmptyEndpoint
	}
	if c.Bucket == "" {
		return errEmptyBucket
	}
	return nil
}

type FeedConfig struct {
	BatchSize int
	CacheTTL  time.Duration
}

func (c FeedConfig) Validate() error {
	if c.BatchSize <= 0 {
		return errInvalidBatchSize
	}
	return nil
}

func LoadEnv() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load()
}

// InitConfig reads app.yaml from dir into the global viper instance.
func InitConfig(dir string) error {
	viper.AddConfigPath(dir)
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("feed.batch-size", DefaultBatchSize)
	viper.SetDefault("cache.ttl", DefaultCacheTTL)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read app.yaml: %w", err)
	}
	return nil
}

func DBFromEnv() DBConfig {
	return DBConfig{
		Username: os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		DBName:   os.Getenv("POSTGRES_DATABASE"),
		SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
	}
}

func S3FromEnv() S3Config {
	return S3Config{
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		Bucket:        viper.GetString("s3.bucket"),
		PublicBaseURL: viper.GetString("s3.public-base-url"),
	}
}

func FeedFromViper() FeedConfig {
	return FeedConfig{
		BatchSize: viper.GetInt("feed.batch-size"),
		CacheTTL:  viper.GetDuration("cache.ttl"),
	}
}
