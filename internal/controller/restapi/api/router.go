package api

import (
	"github.com/communitycms/media-service/config"
	"github.com/communitycms/media-service/internal/usecase"
	"github.com/communitycms/media-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewMediaRoutes(
	apiGroup fiber.Router,
	cfg *config.Config,
	media usecase.MediaUseCase,
	migration usecase.MigrationUseCase,
	l logger.Interface,
) {
	r := &API{media: media, migration: migration, upload: cfg.Upload, logger: l}

	{
		// Uploads
		apiGroup.Post("/uploads", r.uploadImage)
		apiGroup.Get("/uploads/*", r.getFile)
		apiGroup.Delete("/uploads/*", r.deleteFile)

		// Admin
		apiGroup.Post("/admin/migrate-media", r.runMigration)
		apiGroup.Get("/admin/migrate-media", r.migrationStatus)
	}
}
