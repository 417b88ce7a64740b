package allocations

import (
	allocsvc "brickmark-backend/internal/application/allocations"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles allocation handlers with the orchestrator service.
type Handlers struct {
	Service *allocsvc.Service
}

type actorShape struct {
	UserID   string
	IssuerID string
}

func getActor(c *fiber.Ctx) *actorShape {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return nil
	}
	a := &actorShape{}
	a.UserID, _ = m["user_id"].(string)
	if v, ok := m["issuer_id"].(string); ok {
		a.IssuerID = v
	}
	return a
}

type createCategoryRequest struct {
	AssetID string `json:"asset_id"`
	allocsvc.CreateCategoryInput
}

// CreateCategory POST /api/v1/allocations/create-category
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var body createCategoryRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.AssetID == "" || body.Category == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	assetID, err := uuid.Parse(body.AssetID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.IssuerID == "" {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	issuerID, err := uuid.Parse(actor.IssuerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for issuer_id", 400, nil)
	}

	created, err := h.Service.CreateCategory(c.Context(), assetID, issuerID, body.CreateCategoryInput)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.SuccessCreated(c, "Allocation category created successfully", created, nil)
}

// UpdateCategory PATCH /api/v1/allocations/update-category/:allocation_id
func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	allocationID, err := uuid.Parse(c.Params("allocation_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for allocation_id", 400, nil)
	}

	var body allocsvc.UpdateCategoryInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.IssuerID == "" {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	issuerID, err := uuid.Parse(actor.IssuerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for issuer_id", 400, nil)
	}

	updated, err := h.Service.UpdateCategory(c.Context(), allocationID, issuerID, body)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Allocation category updated successfully", updated, nil)
}

// DeleteCategory DELETE /api/v1/allocations/delete-category/:allocation_id
func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	allocationID, err := uuid.Parse(c.Params("allocation_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for allocation_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.IssuerID == "" {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	issuerID, err := uuid.Parse(actor.IssuerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for issuer_id", 400, nil)
	}

	result, err := h.Service.DeleteCategory(c.Context(), allocationID, issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Allocation category deleted successfully", result, nil)
}

// GetStats GET /api/v1/allocations/stats/:asset_id
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.IssuerID == "" {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	issuerID, err := uuid.Parse(actor.IssuerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for issuer_id", 400, nil)
	}

	stats, err := h.Service.GetStats(c.Context(), assetID, issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Allocation stats fetched successfully", stats, nil)
}

// GetEvents GET /api/v1/allocations/events/:asset_id
func (h *Handlers) GetEvents(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.IssuerID == "" {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}
	issuerID, err := uuid.Parse(actor.IssuerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for issuer_id", 400, nil)
	}

	events, err := h.Service.ListEvents(c.Context(), assetID, issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Allocation events fetched successfully", events, nil)
}
