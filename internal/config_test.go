package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir()) // no .env around
	t.Setenv("JWT_SECRET", "secret")

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal("0.0.0.0:8080", config.Addr())
	req.Equal("badger", config.StoreDriver)
	req.Equal(256, config.ConnectionBufferSize)
	req.Equal(60*time.Second, config.PongWait)
	req.False(config.StrictPersistence)
	req.Nil(config.Origins())
}

func TestLoadConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("STRICT_PERSISTENCE", "true")
	t.Setenv("PERSIST_TIMEOUT", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal(9000, config.Port)
	req.True(config.StrictPersistence)
	req.Equal(250*time.Millisecond, config.PersistTimeout)
	req.Equal([]string{"http://a.test", "http://b.test"}, config.Origins())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port:                 8080,
		JWTSecret:            "secret",
		StoreDriver:          "badger",
		DBPingTimeout:        time.Second,
		RoomCacheTTL:         time.Minute,
		ConnectionBufferSize: 1,
		MaxMessageSize:       1024,
		WriteTimeout:         time.Second,
		PongWait:             time.Minute,
		PersistTimeout:       time.Second,
		StatsInterval:        time.Minute,
		RestartInterval:      time.Second,
		ShutdownTimeout:      time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }},
		{"postgres without url", func(c *Config) { c.StoreDriver = "postgres" }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"empty send buffer", func(c *Config) { c.ConnectionBufferSize = 0 }},
		{"pong wait too short", func(c *Config) { c.PongWait = time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
