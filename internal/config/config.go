package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:":8085"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	RateLimitRPS int           `envconfig:"RATE_LIMIT_RPS" default:"100"`
}

type DatabaseConfig struct {
	// Driver is "mysql" or "memory".
	Driver       string        `envconfig:"DB_DRIVER" default:"mysql"`
	Host         string        `envconfig:"DB_HOST" default:"localhost"`
	Port         string        `envconfig:"DB_PORT" default:"3306"`
	Username     string        `envconfig:"DB_USER" default:"root"`
	Password     string        `envconfig:"DB_PASS" default:"password"`
	Database     string        `envconfig:"DB_NAME" default:"cricket_booking"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	MaxLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=true",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

type KafkaConfig struct {
	Brokers          []string `envconfig:"KAFKA_BROKERS" default:"localhost:29092"`
	GroupID          string   `envconfig:"KAFKA_GROUP_ID" default:"cricket-booking"`
	GroundTopic      string   `envconfig:"KAFKA_GROUND_TOPIC" default:"ground-updates"`
	MockMode         bool     `envconfig:"KAFKA_MOCK_MODE" default:"true"`
	ConsumerDisabled bool     `envconfig:"KAFKA_CONSUMER_DISABLED" default:"false"`
}

type RedisConfig struct {
	// An empty Addr disables the distributed slot lock.
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"SLOT_LOCK_TTL" default:"10s"`
	LockWait time.Duration `envconfig:"SLOT_LOCK_WAIT" default:"3s"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type BookingConfig struct {
	// PlatformFeeBasisPoints is the surcharge on the base rental, 500 = 5%.
	PlatformFeeBasisPoints int64 `envconfig:"PLATFORM_FEE_BPS" default:"500"`
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Booking  BookingConfig
	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
}

// LoadEnvFiles loads the first .env file found among files (or ".env" when none are given).
// A missing file is not an error; the process environment still applies.
func LoadEnvFiles(files ...string) string {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			return f
		}
	}
	return ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "memory":
	default:
		return fmt.Errorf("load config: DB_DRIVER must be mysql or memory, got %q", c.Database.Driver)
	}
	if c.Booking.PlatformFeeBasisPoints < 0 {
		return fmt.Errorf("load config: PLATFORM_FEE_BPS must not be negative")
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("load config: RATE_LIMIT_RPS must be positive")
	}
	return nil
}
