package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition-service/internal/config"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestOpenStoresMemory(t *testing.T) {
	st, err := openStores(&config.Config{DB: config.DBConfig{Driver: config.StoreDriverMemory}}, zerolog.Nop())
	require.NoError(t, err)
	defer st.close()

	count, err := st.users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Nil(t, st.health)
}
