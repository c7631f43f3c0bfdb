package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/amire/crewboard/internal/infrastructure/config"
)

const connectTimeout = 10 * time.Second

// DB is the Postgres pool behind the job and team repositories.
type DB struct {
	DB *sqlx.DB
}

// PoolStats is the slice of sql.DBStats reported on /health/detailed.
type PoolStats struct {
	MaxOpen      int    `json:"max_open_connections"`
	Open         int    `json:"open_connections"`
	InUse        int    `json:"in_use"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
}

// New opens the pool and fails unless the server answers within ten seconds.
func New(cfg config.DatabaseConfig) (*DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.Check(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func open(cfg config.DatabaseConfig) (*DB, error) {
	pool, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{DB: pool}, nil
}

// Close releases the pool
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// Check pings the server within ctx
func (db *DB) Check(ctx context.Context) error {
	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Stats reports the pool counters
func (db *DB) Stats() PoolStats {
	s := db.DB.Stats()
	return PoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration.String(),
	}
}

// WithTransaction runs fn in a transaction. It commits when fn returns nil
// and rolls back on an error or a panic.
func (db *DB) WithTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
