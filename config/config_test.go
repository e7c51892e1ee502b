package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_PASSCODE", "maison")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 16000, cfg.Realtime.InputSampleRate)
	assert.Equal(t, 24000, cfg.Realtime.OutputSampleRate)
	assert.Equal(t, 15*time.Second, cfg.Realtime.ConnectTimeout)
	assert.Equal(t, 8*time.Hour, cfg.Admin.TokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RequiresPasscode(t *testing.T) {
	t.Setenv("ADMIN_PASSCODE", "")
	t.Setenv("ADMIN_PASSCODE_HASH", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADMIN_PASSCODE_HASH", "$2a$12$abc")
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("REALTIME_SEND_QUEUE_SIZE", "8")
	t.Setenv("REALTIME_CONNECT_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://maison.example, https://admin.maison.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Realtime.SendQueueSize)
	assert.Equal(t, 15*time.Second, cfg.Realtime.ConnectTimeout)
	assert.Equal(t, []string{"https://maison.example", "https://admin.maison.example"}, cfg.CORS.AllowedOrigins)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", db.DSN())
}
