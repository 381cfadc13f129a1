// Package database opens the postgres pool behind the postgres storage driver.
package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/config"
)

const (
	defaultMaxConns = 10
	attempts        = 10
	backoff         = 2 * time.Second
	pingTimeout     = 5 * time.Second
)

func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
	return u.String()
}

// Connect returns a pool once postgres answers a ping, retrying while the
// database is still starting.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	lg := logger.New("database")
	for attempt := 1; ; attempt++ {
		pool, err := ping(ctx, pcfg)
		if err == nil {
			lg.Info("db_connected", map[string]any{"host": cfg.Host, "database": cfg.Database, "attempt": attempt})
			return pool, nil
		}
		if attempt == attempts {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
		}
		lg.Warn("db_connect_retry", map[string]any{"attempt": attempt, "error": err.Error()})

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
}

func ping(ctx context.Context, pcfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
