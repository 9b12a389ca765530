package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/communitycms/media-service/internal/controller/restapi/api/response"
	"github.com/communitycms/media-service/internal/controller/restapi/api/validate"
	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/internal/infrastructure/transform"
	"github.com/communitycms/media-service/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Upload and process image
// @Description Validates, transforms and stores an uploaded image under the upload layout
// @Tags 		uploads
// @Accept 		mpfd
// @Produce 	json
// @Param 		file 			  formData file   true  "Image file (jpg, png, webp, gif)"
// @Param 		maxWidth 		  formData int    false "Bounding box width (default 1600)"
// @Param 		quality 		  formData int 	  false "Encoder quality 1-100 (default 80)"
// @Param 		generateThumbnail formData string false "Whether to derive a thumbnail (default true)"
// @Param 		maxFileSizeKB 	  formData int    false "Target output size; quality is searched down to a floor"
// @Success 	201 {object} response.Upload
// @Failure 	400 {object} response.Error "Validation failure"
// @Failure 	500 {object} response.Error "Processing or storage failure"
// @Router 		/api/uploads [post]
func (r *API) uploadImage(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	// 1. size and media type policy, before any processing
	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "file is empty")
	}

	contentType := file.Header.Get("Content-Type")
	if err := validate.Check(contentType, file.Size); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	// 2. extension allow-list
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !validate.AllowedExtensions[ext] {
		return errorResponse(ctx, http.StatusBadRequest, "unsupported file extension. Allowed: .jpg, .jpeg, .png, .webp, .gif")
	}

	// 3. processing options
	opts := dto.ProcessOptions{
		MaxWidth:          r.upload.MaxWidth,
		MaxHeight:         r.upload.MaxHeight,
		Quality:           r.upload.Quality,
		OutputFormat:      transform.FormatWebP,
		GenerateThumbnail: true,
		ThumbnailWidth:    r.upload.ThumbnailWidth,
		ThumbnailQuality:  r.upload.ThumbnailQuality,
	}

	if widthStr := ctx.FormValue("maxWidth"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "maxWidth must be a number")
		}
		if width < validate.MinMaxWidth || width > validate.MaxMaxWidth {
			return errorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("maxWidth must be between %d and %d", validate.MinMaxWidth, validate.MaxMaxWidth))
		}
		opts.MaxWidth = width
	}

	if qualityStr := ctx.FormValue("quality"); qualityStr != "" {
		quality, err := strconv.Atoi(qualityStr)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "quality must be a number")
		}
		if quality < validate.MinQuality || quality > validate.MaxQuality {
			return errorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("quality must be between %d and %d", validate.MinQuality, validate.MaxQuality))
		}
		opts.Quality = quality
	}

	if thumbStr := ctx.FormValue("generateThumbnail"); thumbStr != "" {
		generate, err := strconv.ParseBool(thumbStr)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "generateThumbnail must be a boolean")
		}
		opts.GenerateThumbnail = generate
	}

	if targetStr := ctx.FormValue("maxFileSizeKB"); targetStr != "" {
		target, err := strconv.Atoi(targetStr)
		if err != nil || target < 0 {
			return errorResponse(ctx, http.StatusBadRequest, "maxFileSizeKB must be a non-negative number")
		}
		opts.TargetSizeKB = target
	}

	// 4. read the upload
	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - api - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		r.logger.Error(err, "restapi - api - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with reading the file")
	}

	// 5. run the pipeline
	asset, err := r.media.Process(ctx.UserContext(), data, file.Filename, contentType, opts)
	if err != nil {
		r.logger.Error(err, "restapi - api - uploadImage")

		if errors.Is(err, errs.ErrDecode) {
			return errorResponseDetails(ctx, http.StatusInternalServerError, "failed to decode image", err.Error())
		}

		return errorResponse(ctx, http.StatusInternalServerError, "failed to upload image, please try again")
	}

	// 6. response
	resp := response.Upload{
		Success: true,
		Data: response.UploadData{
			URL:      asset.URL,
			Filename: asset.Filename,
			Size:     asset.Size,
			Width:    asset.Width,
			Height:   asset.Height,
			Format:   asset.Format,
		},
	}
	if asset.Thumbnail != nil {
		resp.Data.ThumbnailURL = asset.Thumbnail.URL
	}

	return ctx.Status(http.StatusCreated).JSON(resp)
}
