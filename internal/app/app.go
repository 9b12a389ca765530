package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/communitycms/media-service/config"
	kafkactrl "github.com/communitycms/media-service/internal/controller/kafka"
	"github.com/communitycms/media-service/internal/controller/restapi"
	"github.com/communitycms/media-service/internal/controller/worker/outbox"
	infrakafka "github.com/communitycms/media-service/internal/infrastructure/kafka"
	"github.com/communitycms/media-service/internal/infrastructure/storage"
	"github.com/communitycms/media-service/internal/infrastructure/transform"
	"github.com/communitycms/media-service/internal/repo"
	"github.com/communitycms/media-service/internal/repo/persistent"
	"github.com/communitycms/media-service/internal/usecase/media"
	"github.com/communitycms/media-service/internal/usecase/migration"
	"github.com/communitycms/media-service/pkg/httpserver"
	"github.com/communitycms/media-service/pkg/kafka/consumer"
	"github.com/communitycms/media-service/pkg/kafka/producer"
	"github.com/communitycms/media-service/pkg/logger"
	"github.com/communitycms/media-service/pkg/postgres"
	"github.com/communitycms/media-service/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Storage layout, ensured once at process start
	fileStore, err := storage.New(cfg.Upload.Dir)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - storage.New: %w", err))
	}

	// Postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// Optional S3 mirror
	var mirror repo.MirrorRepo
	if cfg.S3.Enabled {
		s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
		defer s3Cancel()
		s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
		}
		mirror = persistent.NewMirrorRepo(s3c, cfg.S3.Bucket)
	}

	// Repository
	recordRepo := persistent.NewRecordRepo(pg)
	outboxRepo := persistent.NewOutboxEventRepo(pg)

	// Use-Case

	// media use-case
	mediaUseCase := media.New(
		transform.New(),
		fileStore,
		outboxRepo,
		mirror,
		l,
	)

	// migration use-case
	migrationUseCase := migration.New(
		recordRepo,
		fileStore,
		outboxRepo,
		pg,
		l,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		mediaUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.OutboxRelay.MaxRetries, cfg.Kafka.EventsTopic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Kafka Consumer (asset-deletion commands)
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DeleteTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		mediaUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.DeleteConsumer.CommitTimeout,
		cfg.DeleteConsumer.ProcessTimeout,
		cfg.DeleteConsumer.Workers,
	)

	// HTTP Server
	httpServer := httpserver.New(
		l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
	)
	restapi.NewRouter(httpServer.App, cfg, mediaUseCase, migrationUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.DeleteConsumer.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
