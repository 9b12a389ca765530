package repo

import (
	"context"
	"io"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/google/uuid"
)

type (
	// AssetStore is the on-disk upload layout.
	AssetStore interface {
		WriteAsset(name string, res *dto.TransformResult) (*entity.ProcessedAsset, error)
		WriteRaw(name string, data []byte) (*entity.ProcessedAsset, error)
		Open(rel string) (io.ReadCloser, error)
		Remove(rel string) error
	}

	// RecordRepo is the narrow contract to the external CMS store: read
	// rows whose media field still holds a legacy inline payload, and write
	// a canonical URL back.
	RecordRepo interface {
		FindInlineMedia(ctx context.Context) ([]entity.ContentRecord, error)
		UpdateMediaURL(ctx context.Context, id int64, url string) error
		CountInlineMedia(ctx context.Context) (int, error)
		CountFileMedia(ctx context.Context) (int, error)
	}

	OutboxEventRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, ids uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	// MirrorRepo replicates stored assets to an S3-compatible bucket.
	MirrorRepo interface {
		UploadBytes(ctx context.Context, key string, data []byte, contentType string, size int64) error
		Delete(ctx context.Context, key string) error
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
