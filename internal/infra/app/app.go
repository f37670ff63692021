package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cloudfirestore "cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/fault"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/config"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/database"
	kafkainfra "github.com/NazwanSM/nusavarta-auth/internal/infra/kafka"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/logger"
	redisinfra "github.com/NazwanSM/nusavarta-auth/internal/infra/redis"
	"github.com/NazwanSM/nusavarta-auth/internal/infra/telemetry"
	firebaserepo "github.com/NazwanSM/nusavarta-auth/internal/repository/firebase"
	firestorerepo "github.com/NazwanSM/nusavarta-auth/internal/repository/firestore"
	localrepo "github.com/NazwanSM/nusavarta-auth/internal/repository/local"
	postgresrepo "github.com/NazwanSM/nusavarta-auth/internal/repository/postgres"
	redisrepo "github.com/NazwanSM/nusavarta-auth/internal/repository/redis"
	"github.com/NazwanSM/nusavarta-auth/internal/transport/http/routes"
	"github.com/NazwanSM/nusavarta-auth/internal/usecase"
)

// Application wires the service together and owns the lifecycle of its
// backing connections.
type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	session *usecase.SessionManager
	closers []func()
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}

	identity, err := a.buildIdentityProvider(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	profiles, pool, err := a.buildProfileRepository(ctx, cfg, log)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	creds, redisClient := a.buildCredentialStore(cfg, log)
	reporter := a.buildReporter(cfg, log)

	authService := usecase.NewAuthService(identity, profiles, creds, reporter,
		usecase.AuthPolicy{MinPasswordScore: cfg.Auth.PasswordMinScore}, log)
	profileService := usecase.NewProfileService(identity, profiles, reporter, log)
	session := usecase.NewSessionManager(authService, profiles, identity, log)
	a.session = session

	deps := routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Services: routes.ServiceSet{
			Session:  session,
			Profiles: profileService,
		},
	}
	if pool != nil {
		deps.Database = pool
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine, err := routes.Register(deps)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("register routes: %w", err)
	}
	a.engine = engine

	return a, nil
}

func (a *Application) buildIdentityProvider(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (port.IdentityProvider, error) {
	switch cfg.Identity.Backend {
	case "firebase":
		provider, err := firebaserepo.NewIdentityProvider(ctx, cfg.Firebase, log)
		if err != nil {
			return nil, fmt.Errorf("init firebase identity provider: %w", err)
		}
		a.closers = append(a.closers, provider.Close)
		log.Info("firebase identity provider initialized",
			zap.String("project_id", cfg.Firebase.ProjectID))
		return provider, nil
	case "local":
		provider := localrepo.NewIdentityProvider(log)
		a.closers = append(a.closers, provider.Close)
		log.Info("local identity provider initialized")
		return provider, nil
	}
	return nil, fmt.Errorf("unknown identity backend %q", cfg.Identity.Backend)
}

func (a *Application) buildProfileRepository(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (port.ProfileRepository, *pgxpool.Pool, error) {
	switch cfg.Store.Backend {
	case "firestore":
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}
		client, err := cloudfirestore.NewClient(ctx, cfg.Firebase.ProjectID, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("init firestore: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return firestorerepo.NewProfileRepository(client, cfg.Firebase.UsersCollection, log), nil, nil
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return postgresrepo.NewProfileRepository(pool), pool, nil
	case "memory":
		log.Info("in-memory profile store initialized")
		return localrepo.NewProfileRepository(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// buildCredentialStore prefers Redis; when no instance is reachable the
// snapshot degrades to process memory, which loses remembered emails on
// restart but keeps login flows working.
func (a *Application) buildCredentialStore(cfg *config.AppConfig, log *zap.Logger) (port.CredentialStore, *redisinfra.Client) {
	client, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, using in-memory credential store", zap.Error(err))
		return localrepo.NewCredentialStore(), nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return redisrepo.NewCredentialStore(client.Client(), cfg.Redis.CredentialPrefix), client
}

func (a *Application) buildReporter(cfg *config.AppConfig, log *zap.Logger) fault.Reporter {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, reporting faults to the log")
		return fault.NewLogReporter(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, reporting faults to the log", zap.Error(err))
		return fault.NewLogReporter(log)
	}
	a.closers = append(a.closers, func() { _ = producer.Close() })
	return kafkainfra.NewFaultReporter(producer, cfg.App, log)
}

func (a *Application) closeAll() {
	if a.session != nil {
		a.session.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeAll()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
