package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
	"github.com/communitycms/media-service/internal/infrastructure"
	"github.com/communitycms/media-service/internal/infrastructure/naming"
	"github.com/communitycms/media-service/internal/infrastructure/storage"
	"github.com/communitycms/media-service/internal/repo"
	"github.com/communitycms/media-service/pkg/logger"
	"github.com/communitycms/media-service/pkg/types/errs"
	"github.com/google/uuid"
)

type MediaUseCase struct {
	transformer infrastructure.Transformer
	store       repo.AssetStore
	outboxRepo  repo.OutboxEventRepo
	mirror      repo.MirrorRepo // nil when mirroring is disabled

	logger logger.Interface
}

func New(
	transformer infrastructure.Transformer,
	store repo.AssetStore,
	outboxRepo repo.OutboxEventRepo,
	mirror repo.MirrorRepo,
	l logger.Interface,
) *MediaUseCase {
	return &MediaUseCase{
		transformer: transformer,
		store:       store,
		outboxRepo:  outboxRepo,
		mirror:      mirror,
		logger:      l,
	}
}

// Process runs one validated upload through the pipeline: transform, derive
// the storage name from the transformed content, persist, mirror, notify.
func (uc *MediaUseCase) Process(
	ctx context.Context,
	data []byte,
	originalName string,
	contentType string,
	opts dto.ProcessOptions,
) (*entity.ProcessedAsset, error) {
	// 1. transform into the target format
	result, err := uc.transformer.Transform(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("MediaUseCase - Process - uc.transformer.Transform: %w", err)
	}

	// 2. name is derived from the transformed bytes, so the extension
	// matches what was actually encoded
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	name := naming.Generate(base+"."+result.Format, result.Data)

	// 3. persist under the upload layout
	asset, err := uc.store.WriteAsset(name, result)
	if err != nil {
		return nil, fmt.Errorf("MediaUseCase - Process - uc.store.WriteAsset: %w", err)
	}

	// 4. best-effort mirror, a failed replica never fails the upload
	uc.mirrorAsset(ctx, asset, result)

	// 5. notify downstream consumers through the outbox
	event, err := uc.createOutboxEvent(eventStored, sourceUpload, asset)
	if err == nil {
		err = uc.outboxRepo.Create(ctx, event)
	}
	if err != nil {
		uc.logger.Error(err, "MediaUseCase - Process - uc.outboxRepo.Create")
	}

	return asset, nil
}

// Open serves a previously stored file by its root-relative path.
func (uc *MediaUseCase) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := uc.store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("MediaUseCase - Open - uc.store.Open: %w", err)
	}

	return f, nil
}

// Delete removes an asset by canonical URL: the file, its thumb- sibling
// and any mirror copies. The asset URL is the only key content records
// ever hold, so it is the only key deletion accepts.
func (uc *MediaUseCase) Delete(ctx context.Context, url string) error {
	rel, ok := storage.RelFromURL(url)
	if !ok {
		return fmt.Errorf("MediaUseCase - Delete: %w: %s", errs.ErrNotFound, url)
	}

	// 1. main file
	if err := uc.store.Remove(rel); err != nil {
		return fmt.Errorf("MediaUseCase - Delete - uc.store.Remove: %w", err)
	}

	// 2. thumbnail sibling, absent for migrated assets
	thumbRel := ""
	if name, found := strings.CutPrefix(rel, storage.ImagesDir+"/"); found {
		thumbRel = storage.ThumbnailsDir + "/" + storage.ThumbPrefix + name

		err := uc.store.Remove(thumbRel)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			uc.logger.Warn("failed to delete path=%s, error=%v", thumbRel, err)
		}
	}

	// 3. mirror copies
	if uc.mirror != nil {
		if err := uc.mirror.Delete(ctx, rel); err != nil {
			uc.logger.Warn("failed to delete mirror key=%s, error=%v", rel, err)
		}
		if thumbRel != "" {
			if err := uc.mirror.Delete(ctx, thumbRel); err != nil {
				uc.logger.Warn("failed to delete mirror key=%s, error=%v", thumbRel, err)
			}
		}
	}

	// 4. notify
	event, err := uc.createOutboxEvent(eventDeleted, sourceDelete, &entity.ProcessedAsset{URL: url})
	if err == nil {
		err = uc.outboxRepo.Create(ctx, event)
	}
	if err != nil {
		uc.logger.Error(err, "MediaUseCase - Delete - uc.outboxRepo.Create")
	}

	return nil
}

func (uc *MediaUseCase) mirrorAsset(ctx context.Context, asset *entity.ProcessedAsset, result *dto.TransformResult) {
	if uc.mirror == nil {
		return
	}

	contentType := "image/" + asset.Format

	key := storage.ImagesDir + "/" + asset.Filename
	if err := uc.mirror.UploadBytes(ctx, key, result.Data, contentType, asset.Size); err != nil {
		uc.logger.Warn("failed to mirror key=%s, error=%v", key, err)
	}

	if asset.Thumbnail != nil && result.Thumbnail != nil {
		key = storage.ThumbnailsDir + "/" + asset.Thumbnail.Filename
		if err := uc.mirror.UploadBytes(ctx, key, result.Thumbnail.Data, contentType, asset.Thumbnail.Size); err != nil {
			uc.logger.Warn("failed to mirror key=%s, error=%v", key, err)
		}
	}
}

func (uc *MediaUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("MediaUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *MediaUseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("MediaUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *MediaUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("MediaUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *MediaUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("MediaUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *MediaUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("MediaUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *MediaUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx)
	if err != nil {
		return fmt.Errorf("MediaUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old events, count = %d", count)
	}

	return nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	var ids uuid.UUIDs

	for _, event := range events {
		ids = append(ids, event.ID)
	}

	return ids
}
