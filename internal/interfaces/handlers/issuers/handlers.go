package issuers

import (
	issuersvc "brickmark-backend/internal/application/issuers"
	"brickmark-backend/internal/middleware"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles issuer handlers with the service.
type Handlers struct {
	Service *issuersvc.Service
	Config  middleware.SessionConfig
}

// CreateIssuer POST /api/v1/issuers/create-issuer
func (h *Handlers) CreateIssuer(c *fiber.Ctx) error {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	rawUserID, _ := m["user_id"].(string)
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	var body issuersvc.CreateIssuerInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	issuer, err := h.Service.CreateIssuer(c.Context(), body, userID)
	if err != nil {
		return response.Fail(c, err)
	}

	// Refresh the session so the new issuer_id and promoted role take effect
	// without a re-login.
	issuerID := issuer.IssuerID.String()
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   rawUserID,
		Fullname: strOf(m["fullname"]),
		Email:    strOf(m["email"]),
		Role:     "superadmin",
		IssuerID: &issuerID,
	})

	return response.SuccessCreated(c, "Issuer created successfully", issuer, nil)
}

// ViewIssuer GET /api/v1/issuers/view-issuer
func (h *Handlers) ViewIssuer(c *fiber.Ctx) error {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	raw, _ := m["issuer_id"].(string)
	issuerID, err := uuid.Parse(raw)
	if err != nil {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}

	out, err := h.Service.GetIssuer(c.Context(), issuerID)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Issuer fetched successfully", out, nil)
}

// UpdateIssuer PATCH /api/v1/issuers/update-issuer
func (h *Handlers) UpdateIssuer(c *fiber.Ctx) error {
	m, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	raw, _ := m["issuer_id"].(string)
	issuerID, err := uuid.Parse(raw)
	if err != nil {
		return response.Error(c, "User not associated with an issuer", 403, nil)
	}

	var body issuersvc.UpdateIssuerInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	issuer, err := h.Service.UpdateIssuer(c.Context(), issuerID, body)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.Success(c, "Issuer updated successfully", issuer, nil)
}

func strOf(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
