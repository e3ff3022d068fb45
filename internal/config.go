package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host      string `env:"HOST,default=0.0.0.0"`
	Port      int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	JWTSecret string `env:"JWT_SECRET,required=true" validate:"required"`
	JWTIssuer string `env:"JWT_ISSUER"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`

	StoreDriver    string        `env:"STORE_DRIVER,default=badger" validate:"oneof=badger postgres"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,default=./data/badger"`
	DatabaseURL    string        `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS,default=10" validate:"min=0"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS,default=5" validate:"min=0"`
	DBConnLifetime time.Duration `env:"DB_CONN_LIFETIME,default=30m"`
	DBPingTimeout  time.Duration `env:"DB_PING_TIMEOUT,default=5s" validate:"gt=0"`
	RedisURL       string        `env:"REDIS_URL"`
	RoomCacheTTL   time.Duration `env:"ROOM_CACHE_TTL,default=5m" validate:"gt=0"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256" validate:"min=1"`
	MaxMessageSize       int           `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=64"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s" validate:"gte=1s"`
	PersistTimeout       time.Duration `env:"PERSIST_TIMEOUT,default=5s" validate:"gt=0"`
	StrictPersistence    bool          `env:"STRICT_PERSISTENCE,default=false"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`

	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=1m" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

// LoadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	return strings.Split(c.AllowedOrigins, ",")
}
