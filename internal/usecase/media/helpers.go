package media

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/communitycms/media-service/internal/entity"
	"github.com/google/uuid"
)

const (
	eventStored  = "media.stored"
	eventDeleted = "media.deleted"

	sourceUpload = "upload"
	sourceDelete = "delete"
)

func (uc *MediaUseCase) createOutboxEvent(eventType, source string, asset *entity.ProcessedAsset) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"type":     eventType,
		"source":   source,
		"url":      asset.URL,
		"filename": asset.Filename,
		"size":     asset.Size,
	}

	if asset.Thumbnail != nil {
		payload["thumbnail_url"] = asset.Thumbnail.URL
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("MediaUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: uuid.New(),
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}
