package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMongo)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SERVER_PORT", "9000")

	cfg := Load()
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "9000", cfg.ServerPort)
}
