package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/spf13/viper"

	"workspace-backend/internal/shared/telemetry"
)

// Options sizes the connection pool for one kind of process.
type Options struct {
	Role            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultServerOptions sizes the pool for the API process.
func DefaultServerOptions() Options {
	return Options{
		Role:            "api",
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions sizes the pool for one-shot CLI runs.
func DefaultMigrateOptions() Options {
	return Options{
		Role:            "migrate",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     10 * time.Second,
	}
}

type override struct {
	key   string
	apply func(o *Options, raw string) error
}

var overrides = []override{
	{"MAX_OPEN_CONNS", func(o *Options, raw string) (err error) { o.MaxOpenConns, err = strconv.Atoi(raw); return }},
	{"MAX_IDLE_CONNS", func(o *Options, raw string) (err error) { o.MaxIdleConns, err = strconv.Atoi(raw); return }},
	{"CONN_MAX_LIFETIME", func(o *Options, raw string) (err error) { o.ConnMaxLifetime, err = time.ParseDuration(raw); return }},
	{"CONN_MAX_IDLE_TIME", func(o *Options, raw string) (err error) { o.ConnMaxIdleTime, err = time.ParseDuration(raw); return }},
	{"PING_TIMEOUT", func(o *Options, raw string) (err error) { o.PingTimeout, err = time.ParseDuration(raw); return }},
}

// OptionsFromEnv applies DB_* overrides on top of defaults. Unparseable values are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	v := viper.New()
	v.SetEnvPrefix("DB")
	v.AutomaticEnv()

	opts := defaults
	for _, ov := range overrides {
		raw := strings.TrimSpace(v.GetString(ov.key))
		if raw == "" {
			continue
		}
		next := opts
		if err := ov.apply(&next, raw); err != nil {
			telemetry.Warn("db.option_invalid", map[string]any{"key": "DB_" + ov.key, "value": raw, "error": err})
			continue
		}
		opts = next
	}
	return opts
}

// Connect opens the pgx-backed pool and pings it before returning.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	opts = withFloors(opts)
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(min(opts.MaxIdleConns, opts.MaxOpenConns))
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"role":     opts.Role,
		"max_open": stats.MaxOpenConnections,
		"max_idle": opts.MaxIdleConns,
		"open":     stats.OpenConnections,
	})
	return pool, nil
}

func withFloors(opts Options) Options {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns < 0 {
		opts.MaxIdleConns = 0
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	return opts
}
