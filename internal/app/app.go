package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/shestoi/linkmarket/internal/api/http"
	"github.com/shestoi/linkmarket/internal/api/http/middleware"
	"github.com/shestoi/linkmarket/internal/config"
	"github.com/shestoi/linkmarket/internal/event/kafka"
	stripeprovider "github.com/shestoi/linkmarket/internal/payment/stripe"
	"github.com/shestoi/linkmarket/internal/repository/postgres"
	redisrepo "github.com/shestoi/linkmarket/internal/repository/redis"
	"github.com/shestoi/linkmarket/internal/service"
	platformlogging "github.com/shestoi/linkmarket/platform/logging"
	platformobservability "github.com/shestoi/linkmarket/platform/observability"
	platformshutdown "github.com/shestoi/linkmarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Storefront Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	readiness   func() bool
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Storefront Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "storefront",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Storefront service", zap.String("http_addr", cfg.HTTPAddr))

	// Shutdown manager создаётся первым: компоненты регистрируются в нём
	// по мере успешной инициализации
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Трейсинг (noop, если выключен)
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.TracingEnabled,
		OTLPEndpoint:          cfg.OTLPEndpoint,
		SamplingRatio:         cfg.TraceSampleRatio,
		ServiceName:           "storefront",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return nil, err
	}
	shutdownMgr.Add("otel", otelShutdown)

	// Подключаемся к PostgreSQL
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	// Проверяем подключение к PostgreSQL
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("PostgreSQL connection established")
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))

	// Применяем миграции
	logger.Info("Applying database migrations")
	db, err := goose.OpenDBWithDriver("pgx", cfg.PostgresDSN)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		pool.Close()
		return nil, err
	}
	migrationsDir := filepath.Join(wd, "migrations")

	if err := goose.Up(db, migrationsDir); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Database migrations applied successfully")

	// Подключаемся к Redis (хранилище сессий)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Redis connection established")
	shutdownMgr.Add("redis_client", platformshutdown.CloseCloser(redisClient))

	// Функция readiness для health check
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return false
		}
		return true
	}

	// Репозитории
	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	chatRepo := postgres.NewChatRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	sessionRepo := redisrepo.NewSessionRepository(redisClient, logger)

	// Kafka publisher событий заказа (nil, если брокер выключен -
	// service слой трактует nil как "не публиковать")
	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		kafkaPublisher := kafka.NewOrderEventPublisher(logger, cfg.KafkaBrokers, cfg.OrderEventTopic)
		shutdownMgr.Add("kafka_publisher", func(ctx context.Context) error {
			return kafkaPublisher.Close()
		})
		publisher = kafkaPublisher
		logger.Info("Kafka publisher enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrderEventTopic),
		)
	}

	// Платёжный процессор
	provider := stripeprovider.NewProvider(logger, stripeprovider.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	})

	// Service слой
	authService := service.NewAuthService(logger, userRepo, sessionRepo, cfg.SessionTTL)
	catalogService := service.NewCatalogService(logger, productRepo)
	checkoutService := service.NewCheckoutService(logger, productRepo, orderRepo, provider)
	reconcilerService := service.NewReconcilerService(logger, orderRepo, publisher)
	orderService := service.NewOrderService(logger, orderRepo, publisher)
	chatService := service.NewChatService(logger, orderRepo, chatRepo)
	reviewService := service.NewReviewService(logger, productRepo, reviewRepo)

	// HTTP handler и роутер
	handler := httpapi.NewHandler(
		logger,
		authService,
		catalogService,
		checkoutService,
		reconcilerService,
		orderService,
		chatService,
		reviewService,
		provider,
	)
	authn := middleware.NewAuthenticator(authService)
	router := httpapi.NewRouter(handler, authn, readiness, logger)

	// Создаём HTTP сервер
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
		readiness:   readiness,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Storefront service", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Storefront service stopped")
	return nil
}
