package api

import (
	"fmt"
	"net/http"

	"github.com/communitycms/media-service/internal/controller/restapi/api/response"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Run legacy media migration
// @Description Converts inline data-URI media values into stored files and canonical URLs
// @Tags 		admin
// @Produce 	json
// @Success 	200 {object} response.Migration
// @Failure 	500 {object} response.Error "Scan failure"
// @Router 		/api/admin/migrate-media [post]
func (r *API) runMigration(ctx *fiber.Ctx) error {
	summary, err := r.migration.Run(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - api - runMigration")

		return errorResponse(ctx, http.StatusInternalServerError, "migration failed")
	}

	resp := response.Migration{
		Message: fmt.Sprintf("migration completed: %d fixed, %d failed", summary.Fixed, summary.Failed),
		Total:   summary.Total,
		Fixed:   summary.Fixed,
		Failed:  summary.Failed,
		Results: summary.Results,
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

// @Summary  	Migration status probe
// @Description Counts inline-encoded vs file-path media values, performs no writes
// @Tags 		admin
// @Produce 	json
// @Success 	200 {object} entity.MigrationStatus
// @Failure 	500 {object} response.Error "Scan failure"
// @Router 		/api/admin/migrate-media [get]
func (r *API) migrationStatus(ctx *fiber.Ctx) error {
	status, err := r.migration.Status(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - api - migrationStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "status probe failed")
	}

	return ctx.Status(http.StatusOK).JSON(status)
}
