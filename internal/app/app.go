package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"election-service/internal/admin"
	"election-service/internal/auth"
	"election-service/internal/candidate"
	"election-service/internal/config"
	"election-service/internal/course"
	"election-service/internal/db"
	"election-service/internal/department"
	"election-service/internal/election"
	"election-service/internal/events"
	"election-service/internal/health"
	"election-service/internal/idgen"
	"election-service/internal/logger"
	"election-service/internal/metrics"
	"election-service/internal/middleware"
	"election-service/internal/position"
	"election-service/internal/schema"
	"election-service/internal/telemetry"
	"election-service/internal/validation"
	"election-service/internal/vote"
	"election-service/internal/voter"
	"election-service/internal/votergroup"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	telemetry *telemetry.Telemetry
	publisher events.Publisher
	auth      *auth.Service
	stop      context.CancelFunc
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "built", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "events", cfg.Events.Driver)

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	m := tel.Metrics
	if err := metrics.RegisterServiceInfo(tel.Meter, ServiceName, Version, cfg.Env); err != nil {
		slogLogger.Warn("failed to register service info metric", "error", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := m.Database.RegisterDB(database.DB, tel.Meter); err != nil {
		slogLogger.Warn("failed to register connection pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, schema.Models(), schema.Statements()...); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    slogLogger,
		db:        database,
		telemetry: tel,
		publisher: newPublisher(cfg.Events, slogLogger),
	}

	emitter := events.NewEmitter(app.publisher, m, slogLogger, uuid.NewString)
	validate := validation.New()

	// Repositories
	departmentRepo := department.NewRepository(database, m)
	courseRepo := course.NewRepository(database, m)
	groupRepo := votergroup.NewRepository(database, m)
	voterRepo := voter.NewRepository(database, m)
	adminRepo := admin.NewRepository(database, m)
	positionRepo := position.NewRepository(database, m)
	candidateRepo := candidate.NewRepository(database, m)
	electionRepo := election.NewRepository(database, m)

	// Auth
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL())
	app.auth = auth.NewService(auth.NewRepository(database, m), voterRepo, adminRepo, tokens, cfg.Auth.RefreshTTL(), m)
	authHandler := auth.NewHandler(app.auth, validate, slogLogger, cfg.Auth.SecureCookies)

	// Handlers
	photos := candidate.NewPhotoStore(cfg.Uploads.Dir, cfg.Uploads.MaxPhotoSize)
	departmentHandler := department.NewHandler(department.NewService(departmentRepo), validate, slogLogger)
	courseHandler := course.NewHandler(course.NewService(courseRepo), validate, slogLogger)
	groupHandler := votergroup.NewHandler(votergroup.NewService(groupRepo), validate, slogLogger)
	voterHandler := voter.NewHandler(voter.NewService(voterRepo), validate, slogLogger)
	adminHandler := admin.NewHandler(admin.NewService(adminRepo), validate, slogLogger)
	positionHandler := position.NewHandler(position.NewService(positionRepo), validate, slogLogger)
	candidateHandler := candidate.NewHandler(candidate.NewService(candidateRepo, photos, slogLogger), validate, slogLogger, photos.MaxSize())
	electionHandler := election.NewHandler(election.NewService(electionRepo, emitter, m), validate, slogLogger)

	voteStore := vote.NewStore(database, m, cfg.Database.TxTimeoutDuration())
	voteHandler := vote.NewHandler(vote.NewService(voteStore, idgen.New(), emitter, m, slogLogger), validate, slogLogger)

	app.router.Use(chimw.RealIP)
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	health.NewHandler(database, slogLogger).RegisterRoutes(app.router)

	// Candidate photos
	app.router.Handle(candidate.PhotoURLPrefix+"*",
		http.StripPrefix(candidate.PhotoURLPrefix, http.FileServer(http.Dir(cfg.Uploads.Dir))))

	// Login, refresh and logout are public
	authHandler.RegisterRoutes(app.router)

	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(tokens, slogLogger))
		r.Get("/me", authHandler.Me)

		manageRoster := auth.Require(auth.CapManageRoster)
		r.Group(func(r chi.Router) {
			r.Use(manageRoster)
			departmentHandler.RegisterRoutes(r)
			courseHandler.RegisterRoutes(r)
			groupHandler.RegisterRoutes(r)
			voterHandler.RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.Require(auth.CapManageAdmins))
			adminHandler.RegisterRoutes(r)
		})

		positionHandler.RegisterRoutes(r, manageRoster)
		candidateHandler.RegisterRoutes(r, manageRoster)
		electionHandler.RegisterRoutes(r, auth.Require(auth.CapManageElections))
		voteHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	ctx, stop := context.WithCancel(context.Background())
	a.stop = stop
	go a.cleanupRefreshTokens(ctx, time.Hour)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port, "version", Version)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ShutdownTimeout bounds how long Shutdown waits for in-flight vote
// transactions.
func (a *App) ShutdownTimeout() time.Duration {
	return a.config.Server.ShutdownTimeoutDuration()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if a.stop != nil {
		a.stop()
	}

	var shutdownErr error
	if a.server != nil {
		shutdownErr = a.server.Shutdown(ctx)
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Error("telemetry shutdown error", "error", err)
	}
	db.Close(a.db)

	return shutdownErr
}

func (a *App) cleanupRefreshTokens(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.auth.CleanupExpired(ctx)
			if err != nil {
				a.logger.Warn("refresh token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("expired refresh tokens removed", "count", n)
			}
		}
	}
}
