package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/admin"
	"election-service/internal/config"
	"election-service/internal/db"
	"election-service/internal/events"
	"election-service/internal/idgen"
	"election-service/internal/logger"
	"election-service/internal/metrics"
	"election-service/internal/schema"
	"election-service/internal/vote"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// Backend is what the commands operate on.
type Backend struct {
	Migrate func(ctx context.Context) error
	Admins  admin.Service
	Votes   vote.Service
	Close   func() error
}

type ConnectFunc func(ctx context.Context) (*Backend, error)

// Connect opens the configured database. Events raised by CLI resets are not
// published; the server is the only producer.
func Connect(ctx context.Context) (*Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithOptions(logger.Options{Env: cfg.Env, Level: cfg.LogLevel})
	slog.SetDefault(log)

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	m, err := metrics.New(otel.Meter("electionctl"))
	if err != nil {
		database.Close()
		return nil, err
	}

	return NewBackend(database, m, cfg.Database.TxTimeoutDuration(), log), nil
}

// NewBackend builds the services over an open database. Close closes it.
func NewBackend(database *bun.DB, m *metrics.Metrics, txTimeout time.Duration, log *slog.Logger) *Backend {
	emitter := events.NewEmitter(events.Noop(), m, log, uuid.NewString)
	store := vote.NewStore(database, m, txTimeout)

	return &Backend{
		Migrate: func(ctx context.Context) error {
			return db.RunMigrations(ctx, database, schema.Models(), schema.Statements()...)
		},
		Admins: admin.NewService(admin.NewRepository(database, m)),
		Votes:  vote.NewService(store, idgen.New(), emitter, m, log),
		Close:  database.Close,
	}
}
