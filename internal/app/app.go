package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/skladtech/inventory-backend/internal/cfg"
	v1Http "github.com/skladtech/inventory-backend/internal/delivery/v1/http"
	"github.com/skladtech/inventory-backend/internal/infrastructure/kafka"
	"github.com/skladtech/inventory-backend/internal/infrastructure/labels"
	s3Repo "github.com/skladtech/inventory-backend/internal/repository/minio"
	"github.com/skladtech/inventory-backend/internal/repository/pgdb"
	pgdbConv "github.com/skladtech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/skladtech/inventory-backend/internal/repository/redis"
	redisConv "github.com/skladtech/inventory-backend/internal/repository/redis/converter"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/clients"
	"github.com/skladtech/inventory-backend/pkg/closer"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
	"github.com/skladtech/inventory-backend/pkg/postgres"
)

// Run собирает приложение, запускает HTTP-сервер и фонового обработчика outbox,
// после чего блокируется до сигнала остановки или фатальной ошибки сервера.
func Run(cfg *config.Config, logger logger.Logger) error {
	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		return err
	}

	// Контекст фоновых задач: очистка этикеток и outbox-доставка.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	cl := closer.NewCloser(2 * time.Second)
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	prConv := pgdbConv.NewProductConverterImpl()
	outboxConv := pgdbConv.NewOutboxEventConverterImpl()
	infoConv := redisConv.NewProductInfoConverterImpl()

	productRepo := pgdb.NewProductRepo(db.Pool, prConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return err
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}
	minioCancel()

	labelRepo := s3Repo.NewLabelRepo(minioClient, cfg.Minio)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, logger)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Errorf(err, "failed to ensure kafka topic")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	labelsInfra := labels.NewLabelsInfrastructure(labelRepo, labels.NewQRRenderer(), cfg.Minio, logger, appCtx)
	cl.Add(func(ctx context.Context) error {
		return labelsInfra.WaitForCleanup(ctx)
	})

	productUC := usecase.NewProductUC(productRepo, db.Pool, cacheRepo, labelsInfra, logger)
	stockUC := usecase.NewStockUC(productRepo, outboxRepo, db.Pool, cacheRepo, logger)
	labelUC := usecase.NewLabelUC(productRepo, labelsInfra, logger)

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, logger, producer, db.Dsn)
	outboxWorker.Start(appCtx)
	cl.Add(func(ctx context.Context) error {
		appCancel()
		outboxWorker.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(productUC, stockUC, labelUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown: ресурсы закрываются в порядке, обратном запуску ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := cl.Close(shutdownCtx); err != nil {
		logger.Warnf("shutdown finished with errors: %v", err)
	}

	logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
