package restapi

import (
	"github.com/communitycms/media-service/config"
	"github.com/communitycms/media-service/internal/controller/restapi/api"
	"github.com/communitycms/media-service/internal/usecase"
	"github.com/communitycms/media-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Media service
// @version 1.0.0
// @host localhost:8080
// @BasePath /api
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	media usecase.MediaUseCase,
	migration usecase.MigrationUseCase,
	l logger.Interface,
) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiGroup := app.Group("/api")
	{
		api.NewMediaRoutes(apiGroup, cfg, media, migration, l)
	}
}
