package uploads

import (
	uploadsvc "brickmark-backend/internal/application/uploads"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadAssetImage POST /api/v1/uploads/asset-image
func (h *Handlers) UploadAssetImage(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.Context(), "asset-images", req.FileName)
	if err != nil {
		log.Error().Err(err).Str("bucket", "asset-images").Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

// UploadAssetDoc POST /api/v1/uploads/asset-doc
func (h *Handlers) UploadAssetDoc(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.Context(), "asset-docs", req.FileName)
	if err != nil {
		log.Error().Err(err).Str("bucket", "asset-docs").Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
