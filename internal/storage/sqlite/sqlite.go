package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"campus-crave/internal/storage"
)

var _ storage.KV = (*KV)(nil)

// KV is a single-file backend, the closest thing to a browser's local storage
// when every process runs on one machine.
type KV struct {
	conn *sql.DB
}

func New(path string) (*KV, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	kv := &KV{conn: conn}
	if err := kv.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return kv, nil
}

func (k *KV) migrate() error {
	_, err := k.conn.Exec(`
	CREATE TABLE IF NOT EXISTS ` + storage.Table + ` (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := k.conn.QueryRowContext(ctx, `SELECT value FROM `+storage.Table+` WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(v), true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.conn.ExecContext(ctx, `
	INSERT INTO `+storage.Table+` (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Close() error { return k.conn.Close() }
