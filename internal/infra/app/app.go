package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/identity"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
	"github.com/arklim/dispatch-console-auth/internal/infra/database"
	kafkainfra "github.com/arklim/dispatch-console-auth/internal/infra/kafka"
	"github.com/arklim/dispatch-console-auth/internal/infra/logger"
	redisinfra "github.com/arklim/dispatch-console-auth/internal/infra/redis"
	"github.com/arklim/dispatch-console-auth/internal/infra/telemetry"
	"github.com/arklim/dispatch-console-auth/internal/repository/memory"
	postgresrepo "github.com/arklim/dispatch-console-auth/internal/repository/postgres"
	redisrepo "github.com/arklim/dispatch-console-auth/internal/repository/redis"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/middleware"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/routes"
	"github.com/arklim/dispatch-console-auth/internal/usecase"
)

// durableProfileID scopes the shared durable store. All tabs of one gateway
// deployment see the same durable credential, mirroring how every tab of a
// browser profile shares its persistent storage.
const durableProfileID = "default"

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	registry *usecase.TabRegistry
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	var auditPublisher port.AuditPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			auditPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			auditPublisher = kafkainfra.NewAuditPublisher(producer, cfg.App, log)
			log.Info("kafka audit publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		auditPublisher = kafkainfra.NewStubPublisher(log)
	}

	identityProvider, backendHandler, err := buildIdentity(cfg, pool, log)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, err
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "console:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	durableStore := redisrepo.NewDurableStore(redisClient.Client(), cfg.Redis.DurablePrefix, durableProfileID)

	factory := func(tabID string) *usecase.TabSession {
		tabStore := memory.NewStore()
		auth := usecase.NewAuthStateStore(tabID, durableStore, identityProvider, auditPublisher, log)
		bootstrap := usecase.NewBootstrapper(durableStore, tabStore, cfg.Session.MaxAge, log)
		impersonation := usecase.NewImpersonationController(tabID, auth, durableStore, identityProvider, auditPublisher, log).
			WithNavigationSync(cfg.Session.DebounceDelay, func() {
				log.Debug("navigation state synced", zap.String("tab_id", tabID))
			})

		return &usecase.TabSession{
			ID:            tabID,
			Bootstrap:     bootstrap,
			Auth:          auth,
			Impersonation: impersonation,
		}
	}

	registry := usecase.NewTabRegistry(factory, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Registry:    registry,
		Telemetry:   provider,
		Backend:     backendHandler,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		registry: registry,
	}, nil
}

// buildIdentity selects the identity provider. Embedded mode runs the
// reference backend in-process against postgres; otherwise the gateway
// dials the configured backend over HTTP.
func buildIdentity(cfg *config.AppConfig, pool *pgxpool.Pool, log *zap.Logger) (port.IdentityProvider, *identity.Handler, error) {
	if !cfg.Backend.Embedded {
		if cfg.Backend.BaseURL == "" {
			return nil, nil, fmt.Errorf("backend base url required when not embedded")
		}
		return identity.NewClient(cfg.Backend), nil, nil
	}

	tokens, err := identity.NewTokenManager(cfg.JWT)
	if err != nil {
		return nil, nil, fmt.Errorf("init token manager: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	hasher := identity.NewHasher(cfg.Argon2)
	service := identity.NewService(users, tokens, hasher, log)

	return service, identity.NewHandler(service), nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting dispatch console auth gateway",
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
