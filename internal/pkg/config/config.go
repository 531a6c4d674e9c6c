package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port        string   `env:"PORT,         default=3000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string   `env:"JWT_SECRET,   required"`
	JWTExpires  Duration `env:"JWT_EXPIRES,  default=7d"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`
	Storage     string   `env:"STORAGE_DRIVER, default=mongo"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Activity  ActivityConfig
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=wasteDB"`
}

type RedisConfig struct {
	Addr           string   `env:"REDIS_ADDR,       default=localhost:6379"`
	Password       string   `env:"REDIS_PASSWORD"`
	DB             int      `env:"REDIS_DB,         default=0"`
	ModuleCacheTTL Duration `env:"MODULE_CACHE_TTL, default=5m"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
}

// BootstrapConfig describes an optional government account created at
// startup when no user holds its email yet.
type BootstrapConfig struct {
	Name     string `env:"BOOTSTRAP_GOV_NAME, default=Municipal Administrator"`
	Email    string `env:"BOOTSTRAP_GOV_EMAIL"`
	Password string `env:"BOOTSTRAP_GOV_PASSWORD"`
}

// Enabled reports whether a bootstrap account was configured.
func (b BootstrapConfig) Enabled() bool {
	return b.Email != "" && b.Password != ""
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}

	switch cfg.Storage {
	case StorageMongo, StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", cfg.Storage)
	}
	return &cfg, nil
}

// Duration is a time.Duration that also accepts a whole number of days
// ("7d"), the format JWT expiry settings are usually written in.
type Duration time.Duration

// EnvDecode implements envconfig.Decoder.
func (d *Duration) EnvDecode(val string) error {
	val = strings.TrimSpace(val)
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid duration %q", val)
		}
		*d = Duration(time.Duration(n) * 24 * time.Hour)
		return nil
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", val, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
