package orders

import (
	"context"
	"testing"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}, &domain.AllocationCategory{}, &domain.Order{}))
	return &Service{DB: db}, db
}

func seedAssetAndCategory(t *testing.T, db *gorm.DB, issuerID uuid.UUID, vestingType string, active bool) (uuid.UUID, uuid.UUID) {
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
		VestingType: vestingType,
		IsActive:    active,
	}
	require.NoError(t, db.Create(&cat).Error)
	return asset.AssetID, cat.AllocationID
}

func TestCreateOrder(t *testing.T) {
	svc, db := setupOrderTest(t)
	issuerID := uuid.New()
	assetID, allocationID := seedAssetAndCategory(t, db, issuerID, domain.NoVesting, true)

	order, err := svc.CreateOrder(context.Background(), issuerID, CreateOrderInput{
		AssetID:       assetID.String(),
		AllocationID:  allocationID.String(),
		InvestorEmail: "buyer@example.com",
		Tokens:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.AmountCents)
	assert.Equal(t, "usd", order.Currency)
	assert.Equal(t, "pending", order.Status)
}

func TestCreateOrder_VestedCategoryRejected(t *testing.T) {
	svc, db := setupOrderTest(t)
	issuerID := uuid.New()
	assetID, allocationID := seedAssetAndCategory(t, db, issuerID, domain.LinearVesting, true)

	_, err := svc.CreateOrder(context.Background(), issuerID, CreateOrderInput{
		AssetID:       assetID.String(),
		AllocationID:  allocationID.String(),
		InvestorEmail: "buyer@example.com",
		Tokens:        10,
	})
	assert.True(t, apperror.IsBadRequest(err))
}

func TestCreateOrder_InactiveCategoryRejected(t *testing.T) {
	svc, db := setupOrderTest(t)
	issuerID := uuid.New()
	assetID, allocationID := seedAssetAndCategory(t, db, issuerID, domain.NoVesting, false)

	_, err := svc.CreateOrder(context.Background(), issuerID, CreateOrderInput{
		AssetID:       assetID.String(),
		AllocationID:  allocationID.String(),
		InvestorEmail: "buyer@example.com",
		Tokens:        10,
	})
	assert.True(t, apperror.IsBadRequest(err))
}

func TestCreateOrder_InvalidEmail(t *testing.T) {
	svc, _ := setupOrderTest(t)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		AssetID:       uuid.New().String(),
		AllocationID:  uuid.New().String(),
		InvestorEmail: "not-an-email",
		Tokens:        10,
	})
	assert.True(t, apperror.IsBadRequest(err))
}

func TestMarkOrderPaid_Idempotent(t *testing.T) {
	svc, db := setupOrderTest(t)
	issuerID := uuid.New()
	assetID, allocationID := seedAssetAndCategory(t, db, issuerID, domain.NoVesting, true)

	order, err := svc.CreateOrder(context.Background(), issuerID, CreateOrderInput{
		AssetID:       assetID.String(),
		AllocationID:  allocationID.String(),
		InvestorEmail: "buyer@example.com",
		Tokens:        10,
	})
	require.NoError(t, err)
	require.NoError(t, svc.AttachPaymentIntent(context.Background(), order.OrderID, "pi_abc"))

	require.NoError(t, svc.MarkOrderPaid(context.Background(), "pi_abc"))
	require.NoError(t, svc.MarkOrderPaid(context.Background(), "pi_abc"))

	var reloaded domain.Order
	require.NoError(t, db.Where("order_id = ?", order.OrderID).First(&reloaded).Error)
	assert.Equal(t, "paid", reloaded.Status)
}

func TestMarkOrderPaid_UnknownIntent(t *testing.T) {
	svc, _ := setupOrderTest(t)
	err := svc.MarkOrderPaid(context.Background(), "pi_missing")
	assert.True(t, apperror.IsNotFound(err))
}
