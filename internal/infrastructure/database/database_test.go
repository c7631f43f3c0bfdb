package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/infrastructure/config"
)

func unreachable() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:         "127.0.0.1",
		Port:         1,
		User:         "crewboard",
		Password:     "secret",
		Name:         "crewboard",
		SSLMode:      "disable",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}
}

func TestOpenAppliesPoolLimits(t *testing.T) {
	db, err := open(unreachable())
	require.NoError(t, err)
	defer db.Close()

	stats := db.Stats()
	assert.Equal(t, 4, stats.MaxOpen)
	assert.Equal(t, 0, stats.InUse)
	assert.Equal(t, "0s", stats.WaitDuration)
}

func TestCheckReportsUnreachableServer(t *testing.T) {
	db, err := open(unreachable())
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = db.Check(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestNewFailsWithoutServer(t *testing.T) {
	db, err := New(unreachable())
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestCloseWithoutPool(t *testing.T) {
	assert.NoError(t, (&DB{}).Close())
}
