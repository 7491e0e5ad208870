package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "ilmekten"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	Store  StoreConfig
	Redis  RedisConfig
	Notify NotifyConfig
	CORS   CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ILMEKTEN_APP_ENV" default:"dev"`
	Port         string `envconfig:"ILMEKTEN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ILMEKTEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ILMEKTEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig points the durable key-value store at a local SQLite file.
type StoreConfig struct {
	Path        string `envconfig:"ILMEKTEN_STORE_PATH" default:"ilmekten.db"`
	AutoMigrate bool   `envconfig:"ILMEKTEN_STORE_AUTO_MIGRATE" default:"true"`
}

// RedisConfig is optional; when no URL or address is set the checkout
// idempotency guard degrades to a passthrough.
type RedisConfig struct {
	URL          string        `envconfig:"ILMEKTEN_REDIS_URL"`
	Address      string        `envconfig:"ILMEKTEN_REDIS_ADDR"`
	Password     string        `envconfig:"ILMEKTEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"ILMEKTEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ILMEKTEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ILMEKTEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ILMEKTEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ILMEKTEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ILMEKTEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis connection should be attempted at all.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// NotifyConfig carries the outbound order-notification settings (EmailJS REST).
type NotifyConfig struct {
	Enabled    bool          `envconfig:"ILMEKTEN_NOTIFY_ENABLED" default:"false"`
	Endpoint   string        `envconfig:"ILMEKTEN_NOTIFY_ENDPOINT" default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID  string        `envconfig:"ILMEKTEN_NOTIFY_SERVICE_ID"`
	TemplateID string        `envconfig:"ILMEKTEN_NOTIFY_TEMPLATE_ID"`
	PublicKey  string        `envconfig:"ILMEKTEN_NOTIFY_PUBLIC_KEY"`
	Recipient  string        `envconfig:"ILMEKTEN_NOTIFY_RECIPIENT"`
	Timeout    time.Duration `envconfig:"ILMEKTEN_NOTIFY_TIMEOUT" default:"10s"`
}

// Ready reports whether the notifier has everything it needs to send.
func (n NotifyConfig) Ready() bool {
	return n.Enabled && n.ServiceID != "" && n.TemplateID != "" && n.PublicKey != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ILMEKTEN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,https://ilmekten.com"`
}
