package shared

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppEnv      string `env:"APP_ENV"      envDefault:"prod"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`

	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DBDSN    string `env:"DB_DSN"    envDefault:"root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4&loc=UTC"`

	// An empty RedisAddr disables the listing cache.
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPass       string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB"          envDefault:"0"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	Workers           int           `env:"WORKERS"            envDefault:"1"`
	AttributeStrategy string        `env:"ATTRIBUTE_STRATEGY" envDefault:"entity"`
	RoomStrategy      string        `env:"ROOM_STRATEGY"      envDefault:"scan"`
	BatchWait         time.Duration `env:"BATCH_WAIT"         envDefault:"2ms"`
	ListTimeout       time.Duration `env:"LIST_TIMEOUT"       envDefault:"10s"`

	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS float64  `env:"RATE_LIMIT_RPS" envDefault:"0"`
	CORSOrigins  []string `env:"CORS_ORIGINS"   envSeparator:","`
	OTELEndpoint string   `env:"OTEL_ENDPOINT"`
}

var (
	drivers             = []string{"mysql", "pgx", "sqlite"}
	attributeStrategies = []string{"naive", "entity", "batch"}
	roomStrategies      = []string{"naive", "scan"}
)

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) CacheEnabled() bool { return c.RedisAddr != "" && c.CacheTTLSeconds > 0 }

func (c Config) Validate() error {
	if !slices.Contains(drivers, c.DBDriver) {
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is empty")
	}
	if !slices.Contains(attributeStrategies, c.AttributeStrategy) {
		return fmt.Errorf("ATTRIBUTE_STRATEGY: unknown strategy %q", c.AttributeStrategy)
	}
	if !slices.Contains(roomStrategies, c.RoomStrategy) {
		return fmt.Errorf("ROOM_STRATEGY: unknown strategy %q", c.RoomStrategy)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}
	if c.ListTimeout < 0 || c.BatchWait < 0 {
		return fmt.Errorf("LIST_TIMEOUT and BATCH_WAIT must not be negative")
	}
	return nil
}
