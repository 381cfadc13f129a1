package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "campus", Password: "s3cr@t", Database: "campus_crave"}
	assert.Equal(t, "postgres://campus:s3cr%40t@db:5432/campus_crave?sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestConnectStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Connect(ctx, config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "x", Database: "x"})
	require.Error(t, err)
}
