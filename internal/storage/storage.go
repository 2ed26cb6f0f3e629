// Package storage provides the key-value slots the tracker persists into.
//
// Every backend stores opaque byte values under string keys. A backend is
// chosen by name at startup; all of them overwrite a key's whole value on Set.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendRedis, BackendMemory}

// KV is a durable key-value store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the root directory of the file backend.
	Dir string

	// DSN is the SQLite file path or the PostgreSQL connection URL.
	DSN string

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
}

// Open creates the backend named by opts.Backend. An empty name selects the file backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFile(opts.Dir)
	case BackendSQLite:
		return NewSQLite(opts.DSN)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN (storage_dsn or DATABASE_URL)")
		}
		return NewPostgres(opts.DSN)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisAddr, opts.RedisUsername, opts.RedisPassword, opts.RedisDB)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
