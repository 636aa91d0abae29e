package database

import (
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_PinsSessionParameters(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:              "db.internal",
		Port:              5433,
		User:              "board",
		Password:          "secret",
		Name:              "jobboard",
		SSLMode:           "disable",
		MaxConns:          10,
		MinConns:          2,
		MaxConnLifetime:   5 * time.Minute,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, pc.HealthCheckPeriod)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "jobboard", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_InvalidDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "board",
		Password: "secret",
		Name:     "jobboard",
		SSLMode:  "bogus",
	}

	_, err := PoolConfig(cfg)
	assert.Error(t, err)
}
