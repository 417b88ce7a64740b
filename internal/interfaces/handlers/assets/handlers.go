package assets

import (
	assetsvc "brickmark-backend/internal/application/assets"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles asset handlers with the service.
type Handlers struct {
	Service *assetsvc.Service
}

func issuerFromSession(c *fiber.Ctx) (uuid.UUID, error) {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return uuid.Nil, fiber.NewError(403, "User not associated with an issuer")
	}
	raw, _ := m["issuer_id"].(string)
	if raw == "" {
		return uuid.Nil, fiber.NewError(403, "User not associated with an issuer")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(400, "Invalid UUID format for issuer_id")
	}
	return id, nil
}

// CreateAsset POST /api/v1/assets/create-asset
func (h *Handlers) CreateAsset(c *fiber.Ctx) error {
	issuerID, err := issuerFromSession(c)
	if err != nil {
		e := err.(*fiber.Error)
		return response.Error(c, e.Message, e.Code, nil)
	}

	var body assetsvc.CreateAssetInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	asset, err := h.Service.CreateAsset(c.Context(), issuerID, body)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.SuccessCreated(c, "Asset created successfully", asset, nil)
}

// GetAsset GET /api/v1/assets/view-asset/:asset_id
func (h *Handlers) GetAsset(c *fiber.Ctx) error {
	issuerID, err := issuerFromSession(c)
	if err != nil {
		e := err.(*fiber.Error)
		return response.Error(c, e.Message, e.Code, nil)
	}
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	asset, err := h.Service.GetAsset(c.Context(), assetID, issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Asset fetched successfully", asset, nil)
}

// ListAssets GET /api/v1/assets/view-assets
func (h *Handlers) ListAssets(c *fiber.Ctx) error {
	issuerID, err := issuerFromSession(c)
	if err != nil {
		e := err.(*fiber.Error)
		return response.Error(c, e.Message, e.Code, nil)
	}

	assets, err := h.Service.ListAssets(c.Context(), issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Assets fetched successfully", assets, nil)
}

// UpdateTokenInformation PATCH /api/v1/assets/token-information/:asset_id
func (h *Handlers) UpdateTokenInformation(c *fiber.Ctx) error {
	issuerID, err := issuerFromSession(c)
	if err != nil {
		e := err.(*fiber.Error)
		return response.Error(c, e.Message, e.Code, nil)
	}
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	var body assetsvc.TokenInfoInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	asset, err := h.Service.UpdateTokenInformation(c.Context(), assetID, issuerID, body)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Token information updated successfully", asset, nil)
}
