package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/middleware"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// uploadField is the multipart field carrying the file.
const uploadField = "file"

// AssetHandler serves /api/v1/assets.
type AssetHandler struct {
	Handler
	assets *service.AssetService
}

func NewAssetHandler(s *server.Server, assets *service.AssetService) *AssetHandler {
	return &AssetHandler{Handler: NewHandler(s), assets: assets}
}

func (h *AssetHandler) ListAssets(c echo.Context, _ *model.EmptyPayload) ([]service.Asset, error) {
	return h.assets.List()
}

func (h *AssetHandler) DeleteAsset(c echo.Context, p *model.AssetNamePayload) error {
	return h.assets.Delete(p.Name)
}

// UploadAsset stores the multipart "file" field. It reads the form itself
// instead of going through Bind so an oversized body maps to 413.
func (h *AssetHandler) UploadAsset(c echo.Context) error {
	logger := middleware.GetLogger(c)

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewPayloadTooLargeError(fmt.Sprintf("File exceeds %d bytes", h.assets.MaxBytes()))
		}
		return errs.NewBadRequestError(fmt.Sprintf("Multipart field %q is required", uploadField), true, nil, nil, nil)
	}

	asset, err := h.assets.Upload(fh)
	if err != nil {
		return err
	}

	logger.Info().
		Str("asset", asset.Name).
		Int64("size", asset.Size).
		Msg("asset uploaded")

	return c.JSON(http.StatusCreated, asset)
}
