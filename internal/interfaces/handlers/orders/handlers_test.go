package orders

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	ordersvc "brickmark-backend/internal/application/orders"
	"brickmark-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStripe struct{}

func (f *fakeStripe) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	return &StripePaymentIntentResult{
		ID:           "pi_test_123",
		ClientSecret: "pi_test_123_secret_abc",
	}, nil
}

func setupOrderApp(t *testing.T, issuerID uuid.UUID) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}, &domain.AllocationCategory{}, &domain.Order{}))

	h := &Handlers{Service: &ordersvc.Service{DB: db}, StripeCreator: &fakeStripe{}}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":   uuid.New().String(),
			"issuer_id": issuerID.String(),
		})
		return c.Next()
	})
	app.Post("/create-order", h.CreateOrder)
	app.Get("/view-orders/:asset_id", h.ListOrders)
	return app, db
}

func seedSellableCategory(t *testing.T, db *gorm.DB, issuerID uuid.UUID) (uuid.UUID, uuid.UUID) {
	asset := domain.Asset{
		IssuerID:        issuerID,
		Name:            "Test Property",
		Status:          "draft",
		TokenSupply:     1000,
		TokenPriceCents: 500,
	}
	require.NoError(t, db.Create(&asset).Error)

	cat := domain.AllocationCategory{
		AssetID:     asset.AssetID,
		IssuerID:    issuerID,
		Category:    "Public Sale",
		Tokens:      300,
		VestingType: domain.NoVesting,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&cat).Error)
	return asset.AssetID, cat.AllocationID
}

func TestCreateOrderHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupOrderApp(t, issuerID)
	assetID, allocationID := seedSellableCategory(t, db, issuerID)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":       assetID.String(),
		"allocation_id":  allocationID.String(),
		"investor_email": "buyer@example.com",
		"tokens":         10,
	})
	req := httptest.NewRequest("POST", "/create-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "pi_test_123", data["payment_intent_id"])
	assert.Equal(t, "pi_test_123_secret_abc", data["client_secret"])
	order := data["order"].(map[string]interface{})
	// 10 tokens at 500 cents.
	assert.Equal(t, float64(5000), order["amount_cents"])
	assert.Equal(t, "pending", order["status"])

	// The payment intent id lands on the stored order.
	var stored domain.Order
	require.NoError(t, db.Where("asset_id = ?", assetID).First(&stored).Error)
	require.NotNil(t, stored.PaymentIntentID)
	assert.Equal(t, "pi_test_123", *stored.PaymentIntentID)
}

func TestCreateOrderHandler_MissingFields(t *testing.T) {
	issuerID := uuid.New()
	app, _ := setupOrderApp(t, issuerID)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest("POST", "/create-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCreateOrderHandler_ExceedsCategory(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupOrderApp(t, issuerID)
	assetID, allocationID := seedSellableCategory(t, db, issuerID)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":       assetID.String(),
		"allocation_id":  allocationID.String(),
		"investor_email": "buyer@example.com",
		"tokens":         301,
	})
	req := httptest.NewRequest("POST", "/create-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListOrdersHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupOrderApp(t, issuerID)
	assetID, allocationID := seedSellableCategory(t, db, issuerID)

	require.NoError(t, db.Create(&domain.Order{
		AssetID:       assetID,
		AllocationID:  allocationID,
		InvestorEmail: "buyer@example.com",
		Tokens:        5,
		AmountCents:   2500,
		Currency:      "usd",
		Status:        "pending",
	}).Error)

	req := httptest.NewRequest("GET", "/view-orders/"+assetID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	orders, _ := result["data"].([]interface{})
	require.Len(t, orders, 1)
}
