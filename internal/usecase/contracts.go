package usecase

import (
	"context"
	"io"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
)

type (
	MediaUseCase interface {
		Process(
			ctx context.Context,
			data []byte,
			originalName string,
			contentType string,
			opts dto.ProcessOptions,
		) (*entity.ProcessedAsset, error)
		Open(ctx context.Context, path string) (io.ReadCloser, error)
		Delete(ctx context.Context, url string) error

		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	MigrationUseCase interface {
		Run(ctx context.Context) (*entity.MigrationSummary, error)
		Status(ctx context.Context) (*entity.MigrationStatus, error)
	}
)
