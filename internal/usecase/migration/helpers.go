package migration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/communitycms/media-service/internal/entity"
	"github.com/google/uuid"
)

const eventMigrated = "media.migrated"

func (uc *MigrationUseCase) createOutboxEvent(recordID int64, asset *entity.ProcessedAsset) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"type":      eventMigrated,
		"source":    "migration",
		"record_id": recordID,
		"url":       asset.URL,
		"filename":  asset.Filename,
		"size":      asset.Size,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("MigrationUseCase - createOutboxEvent - json.Marshal: %w", err)
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
