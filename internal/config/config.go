package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. Only APP_ENV=dev
// may run with it.
const DevJWTSecret = "dev-secret-change-me"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set outside APP_ENV=dev")

type Config struct {
	Env  string `env:"APP_ENV" env-default:"dev"`
	Port int    `env:"PORT" env-default:"3000"`

	MongoURI      string `env:"MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"storefront"`

	JWTSecret    string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" env-default:"1h"`

	// empty RedisAddr selects the in-process catalog cache
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"30s"`

	// empty NATSURL disables order events
	NATSURL string `env:"NATS_URL"`

	OTELEnabled  bool   `env:"OTEL_ENABLED" env-default:"false"`
	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3001"`
	// comma separated IPs or CIDRs of reverse proxies allowed to set X-Forwarded-For
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" env-default:"Admin"`

	WorkerHealthPort int `env:"WORKER_HEALTH_PORT" env-default:"8081"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Env != "dev" && (strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == DevJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

func (c Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func (c Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
