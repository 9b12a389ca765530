package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/communitycms/media-service/internal/infrastructure/storage"
	"github.com/communitycms/media-service/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const cacheControl = "public, max-age=31536000, immutable"

// extension -> content type; unknown extensions fall back to binary
var contentTypes = map[string]string{
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// @Summary  	Serve a stored file
// @Description Returns raw bytes with an immutable cache directive
// @Tags 		uploads
// @Param 		path path string true "Path under the upload root"
// @Success 	200 {file} 	binary
// @Failure 	400 {object} response.Error "Traversal attempt"
// @Failure 	404 {object} response.Error "File not found"
// @Router 		/api/uploads/{path} [get]
func (r *API) getFile(ctx *fiber.Ctx) error {
	path := ctx.Params("*")
	if path == "" {
		return errorResponse(ctx, http.StatusBadRequest, "file path is required")
	}

	// traversal markers are rejected before any filesystem access
	if hostilePath(path) {
		return errorResponse(ctx, http.StatusBadRequest, "invalid file path")
	}

	body, err := r.media.Open(ctx.UserContext(), path)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "file not found")
		}
		if errors.Is(err, errs.ErrTraversal) {
			return errorResponse(ctx, http.StatusBadRequest, "invalid file path")
		}
		r.logger.Error(err, "restapi - api - getFile")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	ctx.Set(fiber.HeaderContentType, contentTypeFor(path))
	ctx.Set(fiber.HeaderCacheControl, cacheControl)

	return ctx.SendStream(body)
}

// @Summary  	Delete a stored asset
// @Description Removes the file, its thumbnail sibling and mirror copies
// @Tags 		uploads
// @Param 		path path string true "Path under the upload root"
// @Success		204 "Deleted"
// @Failure 	400 {object} response.Error "Traversal attempt"
// @Failure 	404 {object} response.Error "File not found"
// @Router 		/api/uploads/{path} [delete]
func (r *API) deleteFile(ctx *fiber.Ctx) error {
	path := ctx.Params("*")
	if path == "" {
		return errorResponse(ctx, http.StatusBadRequest, "file path is required")
	}

	if hostilePath(path) {
		return errorResponse(ctx, http.StatusBadRequest, "invalid file path")
	}

	err := r.media.Delete(ctx.UserContext(), storage.URLPrefix+"/"+path)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "file not found")
		}
		if errors.Is(err, errs.ErrTraversal) {
			return errorResponse(ctx, http.StatusBadRequest, "invalid file path")
		}
		r.logger.Error(err, "restapi - api - deleteFile")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.SendStatus(http.StatusNoContent)
}

func hostilePath(path string) bool {
	return strings.Contains(path, "..") || strings.Contains(path, "~")
}

func contentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}

	return "application/octet-stream"
}
