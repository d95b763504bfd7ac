package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func New(cfg config.DatabaseConfig) (*bun.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)

	db, err := NewWithDSN(dsn)
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)
	return db, nil
}

// NewWithDSN opens and pings a connection for the given DSN (used by tests).
func NewWithDSN(dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected successfully")
	return db, nil
}

func configurePool(db *bun.DB, cfg config.DatabaseConfig) {
	sqlDB := db.DB

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxIdleConns(maxIdle)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 300
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 60
	}
	sqlDB.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime_seconds", connMaxLifetime,
		"conn_max_idle_time_seconds", connMaxIdleTime,
	)
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// ForeignKeyer is implemented by models whose table carries foreign keys.
// Each entry is passed verbatim to CREATE TABLE, e.g.
// `("course_id") REFERENCES "courses" ("id") ON DELETE SET NULL`.
type ForeignKeyer interface {
	ForeignKeys() []string
}

// RunMigrations creates the tables for the given models, in order, and then
// applies the raw statements (indexes). Everything is idempotent so it runs
// on every start.
func RunMigrations(ctx context.Context, db bun.IDB, models []interface{}, statements ...string) error {
	for _, model := range models {
		q := db.NewCreateTable().
			Model(model).
			IfNotExists()
		if fk, ok := model.(ForeignKeyer); ok {
			for _, key := range fk.ForeignKeys() {
				q = q.ForeignKey(key)
			}
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	slog.Info("database migrations completed successfully")
	return nil
}
