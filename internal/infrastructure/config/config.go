package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Cookie   CookieConfig
	API      APIConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type CookieConfig struct {
	// Secret signs the browser id cookie. Required outside development.
	Secret string `env:"COOKIE_SECRET"`
	Secure bool   `env:"COOKIE_SECURE, default=false"`
}

type APIConfig struct {
	BaseURL            string        `env:"API_BASE_URL,             default=http://localhost:5000/api"`
	Timeout            time.Duration `env:"API_TIMEOUT,              default=10s"`
	RetryMaxElapsed    time.Duration `env:"API_RETRY_MAX_ELAPSED,    default=0s"`
	BreakerMaxFailures uint32        `env:"API_BREAKER_MAX_FAILURES, default=5"`
	BreakerOpenTimeout time.Duration `env:"API_BREAKER_OPEN_TIMEOUT, default=30s"`
}

type SessionConfig struct {
	Backend                  string        `env:"SESSION_BACKEND,             default=memory"`
	TTL                      time.Duration `env:"SESSION_TTL,                 default=720h"`
	IdleEvict                time.Duration `env:"SESSION_IDLE_EVICT,          default=30m"`
	BootstrapRetryMaxElapsed time.Duration `env:"BOOTSTRAP_RETRY_MAX_ELAPSED, default=5s"`
	// GateSettle is how long a guarded page waits for verification before
	// the loading placeholder is served.
	GateSettle time.Duration `env:"SESSION_GATE_SETTLE, default=2s"`
}

type CheckoutConfig struct {
	PaymentDelay time.Duration `env:"PAYMENT_DELAY, default=2s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hotel_web"`
}

type RedisConfig struct {
	// Addr empty starts an embedded server.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether ENV is development.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Cookie.Secret == "" && !c.IsDevelopment() {
		return errors.New("config: COOKIE_SECRET is required outside development")
	}
	if c.API.BaseURL == "" {
		return errors.New("config: API_BASE_URL is required")
	}
	return nil
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadFrom processes and validates configuration from l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DevAPIConfig configures the in-memory development API.
type DevAPIConfig struct {
	Port      string        `env:"DEVAPI_PORT,       default=5000"`
	LogLevel  string        `env:"LOG_LEVEL,         default=info"`
	Env       string        `env:"ENV,               default=development"`
	JWTSecret string        `env:"DEVAPI_JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"DEVAPI_TOKEN_TTL,  default=24h"`
}

// LoadDevAPI reads the development API configuration.
func LoadDevAPI() *DevAPIConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	var cfg DevAPIConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
