package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = time.Hour
)

// DB is the process-wide connection pool. It is built once in main and
// passed to every repository; nothing in this package holds a global.
type DB struct {
	*sql.DB
}

// Option configures the connection pool.
type Option func(*poolOptions)

type poolOptions struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// WithMaxOpenConns caps open connections. Values <= 0 keep the default.
func WithMaxOpenConns(n int) Option {
	return func(o *poolOptions) {
		if n > 0 {
			o.maxOpen = n
		}
	}
}

// WithMaxIdleConns caps idle connections. Values <= 0 keep the default.
func WithMaxIdleConns(n int) Option {
	return func(o *poolOptions) {
		if n > 0 {
			o.maxIdle = n
		}
	}
}

// New opens a Postgres pool and verifies it with a ping.
func New(databaseURL string, opts ...Option) (*DB, error) {
	o := poolOptions{
		maxOpen:     defaultMaxOpenConns,
		maxIdle:     defaultMaxIdleConns,
		maxLifetime: defaultConnMaxLifetime,
	}
	for _, opt := range opts {
		opt(&o)
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(o.maxOpen)
	sqlDB.SetMaxIdleConns(o.maxIdle)
	sqlDB.SetConnMaxLifetime(o.maxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}
