// Точка входа Book Market — транзакционное ядро маркетплейса цифровых книг.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует клиенты content store и леджера, auth-сервис с локальной
// ключевой парой, сервисный слой и API handlers, запускает фоновые задачи
// (сверка покупок, очистка nonce, topologymetrics), HTTP-сервер
// с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/bookmarket/internal/api/handlers"
	"github.com/bigkaa/bookmarket/internal/api/middleware"
	"github.com/bigkaa/bookmarket/internal/auth"
	"github.com/bigkaa/bookmarket/internal/config"
	"github.com/bigkaa/bookmarket/internal/contentstore"
	"github.com/bigkaa/bookmarket/internal/database"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/repository"
	"github.com/bigkaa/bookmarket/internal/server"
	"github.com/bigkaa/bookmarket/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Book Market запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("BM_DEPHEALTH_GROUP") == "" {
		logger.Warn("BM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Клиенты внешних систем
	storeClient := contentstore.New(
		cfg.ContentStoreURL,
		cfg.ContentGatewayURL,
		cfg.ContentStoreTimeout,
		logger,
	)
	ledgerClient := ledger.New(
		cfg.LedgerURL,
		cfg.LedgerTimeout,
		cfg.LedgerPollInterval,
		logger,
	)

	// 6. Repositories
	principalRepo := repository.NewPrincipalRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 7. Auth: ключевая пара, nonce store, сервис
	keySet, err := auth.NewKeySet(cfg.JWTKeyFile)
	if err != nil {
		logger.Error("Ошибка инициализации ключа подписи", slog.String("error", err.Error()))
		os.Exit(1)
	}
	nonceStore := auth.NewNonceStore(cfg.NonceTTL, logger)
	nonceStore.StartJanitor(ctx)
	authSvc := auth.NewService(nonceStore, keySet, principalRepo, cfg.TokenTTL, logger)

	// 8. Services
	publishSvc := service.NewPublishService(storeClient, catalogRepo, cfg.MaxContentSize, logger)
	catalogCache := service.NewCatalogCache(cfg.CacheSize, cfg.CacheTTL)
	catalogSvc := service.NewCatalogService(catalogRepo, txRunner, catalogCache, storeClient, logger)
	purchaseSvc := service.NewPurchaseService(
		ledgerClient, catalogRepo, purchaseRepo, attemptRepo,
		cfg.ConfirmTimeout, logger,
	)
	reconcileSvc := service.NewReconcileService(
		ledgerClient, catalogRepo, purchaseRepo, attemptRepo,
		cfg.ReconcileInterval, logger,
	)

	// 9. Фоновая сверка покупок с леджером
	reconcileSvc.Start(ctx)
	defer reconcileSvc.Stop()

	// 9.1 topologymetrics — мониторинг зависимостей
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"bookmarket",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseDSN(),
		cfg.ContentStoreURL,
		cfg.LedgerURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 10. Handlers
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker)
	authHandler := handlers.NewAuthHandler(authSvc, keySet, logger)
	booksHandler := handlers.NewBooksHandler(catalogSvc, publishSvc, cfg.MaxContentSize, logger)
	purchasesHandler := handlers.NewPurchasesHandler(purchaseSvc, reconcileSvc, logger)
	contentHandler := handlers.NewContentHandler(storeClient, logger)

	apiHandler := handlers.NewAPIHandler(
		authHandler,
		booksHandler,
		purchasesHandler,
		contentHandler,
		healthHandler,
		logger,
	)

	// 11. Middleware: метрики, логирование, JWT (публичные маршруты без credential)
	jwtAuth := middleware.NewJWTAuth(keySet, authSvc, cfg.JWTLeeway, logger)

	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		server.JWTAuthWithExclusions(jwtAuth.Middleware()),
	)

	// 12. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Book Market остановлен")
}
