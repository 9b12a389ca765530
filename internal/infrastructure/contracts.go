package infrastructure

import (
	"context"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	Transformer interface {
		Transform(ctx context.Context, data []byte, opts dto.ProcessOptions) (*dto.TransformResult, error)
	}
)
