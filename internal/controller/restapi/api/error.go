package api

import (
	"github.com/communitycms/media-service/internal/controller/restapi/api/response"
	"github.com/gofiber/fiber/v2"
)

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Error: msg})
}

func errorResponseDetails(ctx *fiber.Ctx, code int, msg, details string) error {
	return ctx.Status(code).JSON(response.Error{Error: msg, Details: details})
}
