package api

import (
	"github.com/communitycms/media-service/config"
	"github.com/communitycms/media-service/internal/usecase"
	"github.com/communitycms/media-service/pkg/logger"
)

type API struct {
	media     usecase.MediaUseCase
	migration usecase.MigrationUseCase
	upload    config.Upload
	logger    logger.Interface
}
