package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App   AppConfig
	Mongo MongoConfig
	JWT   JWTConfig
	Admin AdminConfig
	Media MediaConfig
}

type AppConfig struct {
	Name      string `envconfig:"APP_NAME" default:"storefront"`
	Env       string `envconfig:"APP_ENV" default:"dev"`
	Port      string `envconfig:"PORT" default:"8000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI            string        `envconfig:"MONGO_URI" required:"true"`
	DBName         string        `envconfig:"MONGO_DB" default:"shop_db"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	OpTimeout      time.Duration `envconfig:"MONGO_OP_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret         string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TTL" default:"60m"`
}

// AdminConfig holds the single bootstrap admin credential.
type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	Password string `envconfig:"ADMIN_PASSWORD" default:"changeme"`
}

type MediaConfig struct {
	UploadDir   string `envconfig:"MEDIA_UPLOAD_DIR" default:"./public/uploads/products"`
	PublicURL   string `envconfig:"MEDIA_PUBLIC_URL" default:"http://localhost:8000/public/uploads/products"`
	MaxFileSize int64  `envconfig:"MEDIA_MAX_FILE_SIZE" default:"5242880"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Admin.Email = strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
	if cfg.Mongo.OpTimeout <= 0 {
		cfg.Mongo.OpTimeout = 5 * time.Second
	}
	return &cfg, nil
}
