package allocations

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	allocsvc "brickmark-backend/internal/application/allocations"
	assetsvc "brickmark-backend/internal/application/assets"
	"brickmark-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAllocationApp(t *testing.T, issuerID uuid.UUID) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Asset{}, &domain.AllocationCategory{}, &domain.AllocationEvent{},
	))

	assets := &assetsvc.Service{DB: db}
	h := &Handlers{Service: &allocsvc.Service{DB: db, Assets: assets}}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":   uuid.New().String(),
			"issuer_id": issuerID.String(),
		})
		return c.Next()
	})
	app.Post("/create-category", h.CreateCategory)
	app.Patch("/update-category/:allocation_id", h.UpdateCategory)
	app.Delete("/delete-category/:allocation_id", h.DeleteCategory)
	app.Get("/stats/:asset_id", h.GetStats)
	app.Get("/events/:asset_id", h.GetEvents)
	return app, db
}

func seedAsset(t *testing.T, db *gorm.DB, issuerID uuid.UUID, supply int64) uuid.UUID {
	asset := domain.Asset{IssuerID: issuerID, Name: "Test Property", Status: "draft", TokenSupply: supply}
	require.NoError(t, db.Create(&asset).Error)
	return asset.AssetID
}

func postJSON(t *testing.T, app *fiber.App, method, path string, payload map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestCreateCategoryHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	code, result := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(),
		"category": "Founders",
		"tokens":   200,
	})
	assert.Equal(t, 201, code)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "Founders", data["category"])
	assert.Equal(t, float64(200), data["tokens"])
	assert.Equal(t, float64(20), data["percentage"])
}

func TestCreateCategoryHandler_MissingFields(t *testing.T) {
	issuerID := uuid.New()
	app, _ := setupAllocationApp(t, issuerID)

	code, _ := postJSON(t, app, "POST", "/create-category", map[string]interface{}{})
	assert.Equal(t, 400, code)
}

func TestCreateCategoryHandler_BadUUID(t *testing.T) {
	issuerID := uuid.New()
	app, _ := setupAllocationApp(t, issuerID)

	code, result := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": "not-a-uuid",
		"category": "Founders",
		"tokens":   200,
	})
	assert.Equal(t, 400, code)
	errObj, _ := result["error"].(map[string]interface{})
	assert.Equal(t, "Invalid UUID format for asset_id", errObj["message"])
}

func TestCreateCategoryHandler_NoIssuer(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}, &domain.AllocationCategory{}, &domain.AllocationEvent{}))
	h := &Handlers{Service: &allocsvc.Service{DB: db, Assets: &assetsvc.Service{DB: db}}}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": uuid.New().String()})
		return c.Next()
	})
	app.Post("/create-category", h.CreateCategory)

	code, _ := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": uuid.New().String(),
		"category": "Founders",
		"tokens":   200,
	})
	assert.Equal(t, 403, code)
}

func TestCreateCategoryHandler_UnknownAsset(t *testing.T) {
	issuerID := uuid.New()
	app, _ := setupAllocationApp(t, issuerID)

	code, _ := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": uuid.New().String(),
		"category": "Founders",
		"tokens":   200,
	})
	assert.Equal(t, 404, code)
}

func TestUpdateCategoryHandler_RescalesSibling(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	_, created := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Founders", "tokens": 200,
	})
	_, second := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Public Sale", "tokens": 300,
	})
	publicID := second["data"].(map[string]interface{})["allocation_id"].(string)
	foundersID := created["data"].(map[string]interface{})["allocation_id"].(string)

	code, result := postJSON(t, app, "PATCH", "/update-category/"+publicID, map[string]interface{}{
		"tokens": 500,
	})
	assert.Equal(t, 200, code)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(500), data["tokens"])

	var founders domain.AllocationCategory
	require.NoError(t, db.Where("allocation_id = ?", foundersID).First(&founders).Error)
	assert.Equal(t, int64(500), founders.Tokens)
}

func TestDeleteCategoryHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Founders", "tokens": 200,
	})
	_, second := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Public Sale", "tokens": 300,
	})
	publicID := second["data"].(map[string]interface{})["allocation_id"].(string)

	req := httptest.NewRequest("DELETE", "/delete-category/"+publicID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	stats := result["data"].(map[string]interface{})["stats"].(map[string]interface{})
	assert.Equal(t, false, stats["is_valid"])
	assert.Equal(t, float64(300), stats["remaining_tokens"])
}

func TestDeleteCategoryHandler_LastCategory(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	_, created := postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Founders", "tokens": 200,
	})
	onlyID := created["data"].(map[string]interface{})["allocation_id"].(string)

	req := httptest.NewRequest("DELETE", "/delete-category/"+onlyID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetStatsHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Founders", "tokens": 1000,
	})

	req := httptest.NewRequest("GET", "/stats/"+assetID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_valid"])
	assert.Equal(t, float64(1000), data["total_tokens"])
}

func TestGetEventsHandler(t *testing.T) {
	issuerID := uuid.New()
	app, db := setupAllocationApp(t, issuerID)
	assetID := seedAsset(t, db, issuerID, 1000)

	postJSON(t, app, "POST", "/create-category", map[string]interface{}{
		"asset_id": assetID.String(), "category": "Founders", "tokens": 200,
	})

	req := httptest.NewRequest("GET", "/events/"+assetID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	events, _ := result["data"].([]interface{})
	require.Len(t, events, 1)
	first := events[0].(map[string]interface{})
	assert.Equal(t, "CREATED", first["event_type"])
}
