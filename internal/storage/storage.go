// Package storage defines the key/value persistence port the order store
// writes its collections through.
package storage

import (
	"context"
	"errors"
)

// Fixed keys, one per persisted collection.
const (
	KeyUsers   = "cc_users"
	KeyMenu    = "cc_menu"
	KeyOrders  = "cc_orders"
	KeyReviews = "cc_reviews"
	KeyRevenue = "cc_revenue"
)

var Keys = []string{KeyUsers, KeyMenu, KeyOrders, KeyReviews, KeyRevenue}

var ErrClosed = errors.New("storage: closed")

// KV stores whole serialized values by key. Set always replaces the previous value.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Table is the schema shared by the SQL backends.
const Table = "cc_kv"
