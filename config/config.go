package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// 数据库配置
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"` // mysql | sqlite
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"crateaudit"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"crateaudit.db"`

	// Redis配置
	RedisHost     string        `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ViewCacheTTL  time.Duration `env:"VIEW_CACHE_TTL" envDefault:"30m"`

	// MinIO配置
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"127.0.0.1:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"crateaudit"`
	MinioRegion    string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"72h"`

	// 日志配置
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30"` // days
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`

	// Drop folder ingest
	WatchDir    string `env:"WATCH_DIR" envDefault:"exports"`
	WatchUserID int64  `env:"WATCH_USER_ID" envDefault:"1"`

	// Issue vocabulary shared with the analyzer
	IssueVocabularyVersion string   `env:"ISSUE_VOCABULARY_VERSION" envDefault:"v1"`
	IssueTypesExtra        []string `env:"ISSUE_TYPES_EXTRA" envSeparator:","`
}

// Parse reads the environment into a Config without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
